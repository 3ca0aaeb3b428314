package rets

import "fmt"

// Reply codes with wire-level meaning.
const (
	ReplyCodeSuccess   = 0
	ReplyCodeNoRecords = 20201
)

// ReplyError is a non-zero reply code returned inside an otherwise
// successful HTTP response. On login any non-zero code is an auth failure;
// on search the no-records code is handled before this is raised.
type ReplyError struct {
	Step string
	Code int
	Text string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("rets %s error %d: %s", e.Step, e.Code, e.Text)
}

// TransportError is an unexpected HTTP status from the provider.
type TransportError struct {
	Step       string
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rets %s failed: %d", e.Step, e.StatusCode)
}
