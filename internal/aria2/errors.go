package aria2

import "fmt"

// NetworkError indicates a transport-level failure: connection refused,
// timeout, or a non-success HTTP status. Retryable by the caller.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("engine unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError indicates a syntactically invalid or shape-mismatched
// response. Usually means the engine version does not match expectations.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed engine response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed engine response: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// RemoteError is a failure reported by the engine itself in a well-formed
// response. Code and message are surfaced to the caller verbatim.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}
