package gateway

import "fmt"

// Store operations reported in StoreError.
const (
	OpFetch = "fetch"
	OpWrite = "write"
)

// StoreError reports a failed interaction with the reservation store.
// It is never retried by the gateway.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("reservation store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
