// Package errors provides structured error types for the scopecache library.
//
// Errors are categorized by Stage (where the error occurred) and Kind
// (error category). The Error type includes rich context: store name,
// entry key, scope ID, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.StageLoad, errors.KindLoaderFailed).
//		Store("images").
//		Key("background").
//		Cause(ioErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AlreadyAttached("screen-1")
//	err := errors.StoreClosed("images")
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
