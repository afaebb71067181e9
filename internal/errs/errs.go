// Package errs defines the error type handlers return to the client.
//
// Every failure that reaches the global error handler is rendered as
// {"message": ...} or, when a driver error is attached, as
// {"message": ..., "error": ...}.
package errs
