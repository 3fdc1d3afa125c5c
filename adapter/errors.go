package adapter

import (
	"errors"
	"strings"
)

// ErrAlreadyPrepared is returned when preparing a simulation that is already
// prepared or running.
var ErrAlreadyPrepared = errors.New("simulation already prepared")

// An UnpreparedError is returned when running simulations that were not
// prepared.
type UnpreparedError struct {
	Simulations []string
}

func (e *UnpreparedError) Error() string {
	return "unprepared for simulations: " + strings.Join(e.Simulations, ", ")
}
