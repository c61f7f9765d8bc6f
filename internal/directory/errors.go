package directory

import "fmt"

// FetchFailed is returned when a directory request fails at the transport or HTTP layer.
// Status is 0 when no response was received.
type FetchFailed struct {
	Op      string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *FetchFailed) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: fetch failed: %s", e.Op, e.URL, e.Message)
	}
	return fmt.Sprintf("%s %s: fetch failed: %d %s", e.Op, e.URL, e.Status, e.Message)
}

func (e *FetchFailed) Unwrap() error {
	return e.Err
}

// DecodeFailed is returned when a directory payload does not have the expected shape
type DecodeFailed struct {
	Op      string
	Payload string
	Err     error
}

func (e *DecodeFailed) Error() string {
	return fmt.Sprintf("%s: decode %s: %v", e.Op, e.Payload, e.Err)
}

func (e *DecodeFailed) Unwrap() error {
	return e.Err
}
