package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current instant. Implementations return UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// New returns the process clock.
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
