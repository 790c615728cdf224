package scheduler

import (
	"errors"

	"github.com/kilianp07/promanage/core/model"
)

// ErrInvalidConfiguration is returned when the scheduler cannot run with the
// provided settings, most notably a slot count below one.
var ErrInvalidConfiguration = errors.New("invalid scheduler configuration")

// ErrInvalidJob mirrors model.ErrInvalidJob so callers only need this package.
var ErrInvalidJob = model.ErrInvalidJob
