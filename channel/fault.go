package channel

import "fmt"

// FaultKind classifies channel-level faults.
type FaultKind int

const (
	// FaultTransport indicates the connection failed mid-call.
	FaultTransport FaultKind = iota
	// FaultRemote indicates the remote call raised an error on the provider side.
	FaultRemote
	// FaultClosed indicates the call was attempted on a closed binding.
	FaultClosed
)

func (k FaultKind) String() string {
	switch k {
	case FaultTransport:
		return "transport"
	case FaultRemote:
		return "remote"
	case FaultClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Fault is an error raised by the remote-call mechanism itself, as opposed
// to a non-success status reported inside a reply.
type Fault struct {
	Kind   FaultKind
	Method string
	Msg    string
	Err    error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", f.Method, f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s %s: %s", f.Method, f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
