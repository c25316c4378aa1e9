package domain

// InvocationStatus is the outcome of one action invocation.
type InvocationStatus string

const (
	InvocationOK    InvocationStatus = "ok"
	InvocationError InvocationStatus = "error"
)

// Invocation is the audit record of one action call. Only request metadata is
// kept; computed analytics are never stored.
type Invocation struct {
	ID         string           // uuid
	Action     string           // action name as requested
	Params     []byte           // raw JSON params
	ParamsHash string           // SHA256(action|params)
	Status     InvocationStatus // ok or error
	ErrorKind  string           // domain.Kind of the failure, empty on success
	DurationMs int64
	Timestamp  int64 // unix milliseconds
}
