package errors

import (
	"errors"
	"fmt"
)

// ResourceNotFoundError indicates a resource was not found.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind string, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func NewDeclarationNotFoundError(id int64) *ResourceNotFoundError {
	return NewResourceNotFoundError("declaration", fmt.Sprintf("%d", id))
}

func NewCompanyNotFoundError(nib string) *ResourceNotFoundError {
	return NewResourceNotFoundError("company", nib)
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// InvalidFieldError indicates a field cannot be used for the requested operation.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func NewInvalidFieldError(field, reason string) *InvalidFieldError {
	return &InvalidFieldError{Field: field, Reason: reason}
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func IsInvalidFieldError(err error) bool {
	var e *InvalidFieldError
	return errors.As(err, &e)
}

// InvalidRequestError indicates the caller sent parameters that cannot be served.
type InvalidRequestError struct {
	msg string
}

func NewInvalidRequestError(format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidRequestError) Error() string {
	return e.msg
}

func IsInvalidRequestError(err error) bool {
	var e *InvalidRequestError
	return errors.As(err, &e)
}

// UnauthorizedError indicates the caller could not be authenticated.
type UnauthorizedError struct {
	reason string
}

func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{reason: reason}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.reason)
}

func IsUnauthorizedError(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

// PermissionDeniedError indicates the caller lacks a permission.
type PermissionDeniedError struct {
	Permission string
}

func NewPermissionDeniedError(permission string) *PermissionDeniedError {
	return &PermissionDeniedError{Permission: permission}
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("missing permission %q", e.Permission)
}

func IsPermissionDeniedError(err error) bool {
	var e *PermissionDeniedError
	return errors.As(err, &e)
}

// ExportLimitError indicates an export would exceed the configured row cap.
type ExportLimitError struct {
	Total int
	Limit int
}

func NewExportLimitError(total, limit int) *ExportLimitError {
	return &ExportLimitError{Total: total, Limit: limit}
}

func (e *ExportLimitError) Error() string {
	return fmt.Sprintf("export of %d rows exceeds the limit of %d rows", e.Total, e.Limit)
}

func IsExportLimitError(err error) bool {
	var e *ExportLimitError
	return errors.As(err, &e)
}
