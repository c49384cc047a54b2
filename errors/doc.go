// Package errors provides unified error handling for flowkit pipelines.
// It implements structured error types with error codes, cause wrapping,
// and retryable detection so stages can fold any collaborator failure
// into a single, inspectable error value.
package errors
