package pipeline

import "fmt"

// Kind classifies the result of processing one file.
type Kind int

const (
	// Completed means the output was written.
	Completed Kind = iota
	// Retryable means the source could not be loaded this time; try again next sweep.
	Retryable
	// Fatal means the failure will not resolve by polling.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is what Execute returns for one file.
type Outcome struct {
	Kind   Kind
	Reason string
	Err    error
}

func (o Outcome) String() string {
	if o.Kind == Completed {
		return o.Kind.String()
	}
	return o.Kind.String() + ": " + o.Reason
}

func completed() Outcome { return Outcome{Kind: Completed} }

func retryable(reason string, err error) Outcome {
	return Outcome{Kind: Retryable, Reason: reason, Err: err}
}

func fatal(reason string, err error) Outcome {
	return Outcome{Kind: Fatal, Reason: reason, Err: err}
}
