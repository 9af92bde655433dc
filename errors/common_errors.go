// api/errors/common_errors.go
package errors

import "errors"

var (
	ErrDatabaseOperation    = errors.New("database operation failed")
	ErrInternalServer       = errors.New("internal server error")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrStructureUnavailable = errors.New("structure provider unavailable")
	ErrLockNotAcquired      = errors.New("resource is locked by a concurrent request")
	ErrInvalidQuery         = errors.New("invalid query")
)
