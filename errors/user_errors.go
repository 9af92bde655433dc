// api/errors/user_errors.go
package errors

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrImmutableAdminGroup = errors.New("admin group permissions cannot be modified")
)
