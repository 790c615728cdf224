package plugins

import (
	"github.com/kilianp07/promanage/config"
	"github.com/kilianp07/promanage/core/jobstore"
	infrajobstore "github.com/kilianp07/promanage/infra/jobstore"
)

func init() {
	RegisterStore(config.BackendMemory, func(_ config.StoreConfig, ids jobstore.IDGenerator) (jobstore.Store, error) {
		return jobstore.NewMemoryStore(ids), nil
	})
	RegisterStore(config.BackendSQLite, func(cfg config.StoreConfig, ids jobstore.IDGenerator) (jobstore.Store, error) {
		return infrajobstore.NewSQLiteStore(cfg.Path, ids)
	})
}
