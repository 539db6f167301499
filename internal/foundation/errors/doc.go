// Package errors provides the classified error type used across docmigrate.
//
// Domain packages (rewrite, nav) return plain typed errors; the command layer
// wraps them into a ClassifiedError so the CLI adapter can pick an exit code
// and a message format from the category.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryRules, "rule set rejected").
//		WithContext("config", path).
//		Build()
package errors
