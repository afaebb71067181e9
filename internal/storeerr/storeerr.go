// Package storeerr classifies document store driver errors.
//
// Store failures always reach the client as a 500 carrying the driver's own
// message. The classification only feeds logs and traces, so operators can
// tell a timeout from a write conflict without parsing error strings.
package storeerr

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Code is a coarse category of store failure.
type Code string

const (
	Other          Code = "STORE_FAILURE"
	DuplicateKey   Code = "STORE_DUPLICATE_KEY"
	Timeout        Code = "STORE_TIMEOUT"
	Network        Code = "STORE_NETWORK"
	Canceled       Code = "STORE_CANCELED"
	Disconnected   Code = "STORE_DISCONNECTED"
	InvalidCommand Code = "STORE_INVALID_COMMAND"
)

// invalidCommandCodes are server error codes raised when the command itself
// is malformed, e.g. a bad regex or an update that touches _id.
var invalidCommandCodes = map[int32]bool{
	2:  true, // BadValue
	9:  true, // FailedToParse
	14: true, // TypeMismatch
	51: true, // InvalidRegex
	66: true, // ImmutableField
}

// ErrCode reports the category of err. Errors that are not store failures
// classify as Other.
func ErrCode(err error) Code {
	switch {
	case err == nil:
		return Other
	case errors.Is(err, context.Canceled):
		return Canceled
	case mongo.IsDuplicateKeyError(err):
		return DuplicateKey
	case mongo.IsTimeout(err):
		return Timeout
	case errors.Is(err, mongo.ErrClientDisconnected):
		return Disconnected
	case mongo.IsNetworkError(err):
		return Network
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && invalidCommandCodes[cmdErr.Code] {
		return InvalidCommand
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		for code := range invalidCommandCodes {
			if serverErr.HasErrorCode(int(code)) {
				return InvalidCommand
			}
		}
	}

	return Other
}
