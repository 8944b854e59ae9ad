// Package errors provides custom error types for bc20-explorer.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping.
//
// # Error Types Overview
//
//	┌──────────────────────────┬────────┬─────────────────────────────────────┐
//	│ Error Type               │ HTTP   │ Description                         │
//	├──────────────────────────┼────────┼─────────────────────────────────────┤
//	│ ResourceNotFoundError    │ 404    │ Declaration or company not found    │
//	│ InvalidFieldError        │ 400    │ Field not usable for the operation  │
//	│ InvalidRequestError      │ 400    │ Malformed parameters or body        │
//	│ ExportLimitError         │ 400    │ Export larger than the row cap      │
//	│ UnauthorizedError        │ 401    │ Missing or invalid bearer token     │
//	│ PermissionDeniedError    │ 403    │ Caller lacks the named permission   │
//	└──────────────────────────┴────────┴─────────────────────────────────────┘
//
// # ResourceNotFoundError
//
// Indicates a requested resource was not found in the store.
//
// Constructors:
//   - NewResourceNotFoundError(kind, id string) - Generic resource not found
//   - NewDeclarationNotFoundError(id int64) - Declaration header missing
//   - NewCompanyNotFoundError(nib string) - OSS/NIB record missing
//
// Usage:
//
//	if errors.IsResourceNotFoundError(err) {
//	    c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
//	}
//
// # InvalidFieldError
//
// Returned by operations that need a routable field, such as autocomplete.
// The rule compiler itself never returns it: unknown fields in a filter are
// reported as diagnostics and dropped.
//
// # Type Checking Pattern
//
// All error types provide Is* helper functions that use errors.As
// for proper error chain unwrapping:
//
//	wrapped := fmt.Errorf("loading declaration: %w", errors.NewDeclarationNotFoundError(42))
//	errors.IsResourceNotFoundError(wrapped) // returns true
package errors
