package loader

import "fmt"

// Status is the terminal result of a load.
type Status int

const (
	StatusRendered Status = iota + 1
	StatusNoData
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRendered:
		return "rendered"
	case StatusNoData:
		return "no_data"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) terminal() State {
	switch s {
	case StatusRendered:
		return StateRendered
	case StatusNoData:
		return StateNoData
	default:
		return StateFailed
	}
}

// Outcome is what Initialize reports. Err is a *LoadError when Status is
// StatusFailed and nil otherwise.
type Outcome struct {
	Status   Status
	Segments int
	Err      error
}

// State tracks the loader lifecycle: idle, loading, then one terminal state.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateNoData
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateNoData:
		return "no_data"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage names the step a load failed in.
type Stage string

const (
	StageRequest  Stage = "request"
	StageStatus   Stage = "status"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StageRender   Stage = "render"
)

// LoadError is the reason of a failed load.
type LoadError struct {
	Stage Stage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("chart %s: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the load could succeed: the request
// never completed or the server answered with an error status.
func (e *LoadError) Temporary() bool {
	return e.Stage == StageRequest || e.Stage == StageStatus
}
