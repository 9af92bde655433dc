// api/errors/permission_errors.go
package errors

import "errors"

var (
	ErrInvalidAction         = errors.New("invalid action")
	ErrInvalidEntityType     = errors.New("invalid entity type")
	ErrEntityNotFound        = errors.New("entity not found")
	ErrInvalidPermissionData = errors.New("invalid permission data")
	ErrForbidden             = errors.New("forbidden")
)
