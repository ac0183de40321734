package api

import (
	"errors"

	"connectrpc.com/connect"
)

// ReasonHeader carries the machine-readable failure reason, e.g.
// "insufficient_balance" or "invalid_state".
const ReasonHeader = "Poinku-Error-Reason"

// Reasons produced by the RPC edge itself rather than the domain.
const (
	ReasonUnauthenticated  = "unauthenticated"
	ReasonPermissionDenied = "permission_denied"
)

// NewError builds a connect error tagged with reason.
func NewError(code connect.Code, reason string, err error) *connect.Error {
	cerr := connect.NewError(code, err)
	if reason != "" {
		cerr.Meta().Set(ReasonHeader, reason)
	}
	return cerr
}

// ErrorReason returns the reason attached to an RPC error, or "" if none.
func ErrorReason(err error) string {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return ""
	}
	return cerr.Meta().Get(ReasonHeader)
}
