package triallog

import (
	"errors"

	"audwm/internal/task"
)

// Multi saves to every sink in order. All sinks are attempted; the errors
// are joined.
type Multi []task.Sink

func (m Multi) Save(records []task.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
