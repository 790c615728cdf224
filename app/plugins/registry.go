package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/promanage/config"
	"github.com/kilianp07/promanage/core/jobstore"
)

// StoreFactory builds a job store backend from its configuration.
type StoreFactory func(cfg config.StoreConfig, ids jobstore.IDGenerator) (jobstore.Store, error)

var Stores = map[string]StoreFactory{}

func RegisterStore(name string, f StoreFactory) { Stores[name] = f }

// StoreBackends lists the registered backend names.
func StoreBackends() []string {
	names := make([]string, 0, len(Stores))
	for n := range Stores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewStore opens the backend selected by cfg.Backend.
func NewStore(cfg config.StoreConfig) (jobstore.Store, error) {
	f, ok := Stores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown store backend %q (available: %v)", cfg.Backend, StoreBackends())
	}
	ids, err := jobstore.NewIDGenerator(cfg.IDScheme, cfg.IDPrefix)
	if err != nil {
		return nil, err
	}
	return f(cfg, ids)
}
