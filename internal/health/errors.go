package health

import "errors"

var (
	// ErrProbeTimeout indicates a probe did not answer within its deadline.
	ErrProbeTimeout = errors.New("health: probe timed out")

	// ErrProbePanic indicates a probe panicked while running.
	ErrProbePanic = errors.New("health: probe panicked")

	// ErrProbeNotFound indicates no probe is registered under a name.
	ErrProbeNotFound = errors.New("health: probe not found")
)
