package host

import (
	"context"

	"device-core/pkg/errno"
)

// AppID selects which on-device application a query is addressed to.
type AppID string

const (
	AppBTC AppID = "btc"
	AppEVM AppID = "evm"
)

// Query is one decoded host round. Exactly one of the app payloads is
// set and it must match App; the transport adapter guarantees the JSON
// is well formed but nothing about its semantics.
type Query struct {
	App AppID     `json:"app"`
	BTC *BTCQuery `json:"btc,omitempty"`
	EVM *EVMQuery `json:"evm,omitempty"`
}

// Result is one encoded device round. Error is set instead of an app
// payload when the flow aborts with a reportable error.
type Result struct {
	App   AppID        `json:"app"`
	BTC   *BTCResult   `json:"btc,omitempty"`
	EVM   *EVMResult   `json:"evm,omitempty"`
	Error *ErrorResult `json:"error,omitempty"`
}

// ErrorResult carries the (category, subcode) pair of a reportable abort.
type ErrorResult struct {
	Category int    `json:"category"`
	Subcode  int    `json:"subcode"`
	Message  string `json:"message,omitempty"`
}

// Link is the query/response channel between the device core and the
// untrusted host. Implementations own framing, encoding and timeouts;
// a timeout or a broken link surfaces as an error from NextQuery and
// maps to the same abort-and-cleanup contract as any other failure.
type Link interface {
	// NextQuery blocks until the host sends the next round.
	NextQuery(ctx context.Context) (*Query, error)

	// SendResult replies to the current round.
	SendResult(res *Result) error

	// SendError reports a flow abort to the host.
	SendError(e errno.Errno) error
}

// NewErrorResult converts an Errno to its wire form.
func NewErrorResult(e errno.Errno) *Result {
	return &Result{
		Error: &ErrorResult{
			Category: int(e.Category),
			Subcode:  e.Subcode,
			Message:  e.Message,
		},
	}
}
