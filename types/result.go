package types

// Result is the outcome of a bridge step.
// It is mutated in place while a multi-step check runs and read by a
// callback dispatch once the sequence settles.
type Result struct {
	// Status is the outcome code.
	Status Status `json:"status" yaml:"status"`
	// Message is a human-readable description.
	Message string `json:"message" yaml:"message"`
	// StackTrace is an optional diagnostic trace, empty when none.
	StackTrace string `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
}

// NewResult creates a result without a trace.
func NewResult(status Status, message string) Result {
	return Result{Status: status, Message: message}
}

// OK returns true if the result is a success.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Call dispatches the result to a connection callback.
// A nil callback is ignored.
func (r Result) Call(callback ConnectionCallback) {
	if callback == nil {
		return
	}
	callback(r.Status.LevelCode(), r.Message, r.StackTrace)
}
