// api/controller/controllers.go
package controller

import (
	"errors"
	"net/http"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/service"
)

type Controllers struct {
	Permission *PermissionController
	Group      *GroupController
	Audit      *AuditController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Permission: NewPermissionController(services.Permission),
		Group:      NewGroupController(services.Group),
		Audit:      NewAuditController(services.Audit),
	}
}

// statusFor maps a service error onto the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, perm_errors.ErrInvalidPermissionData),
		errors.Is(err, perm_errors.ErrInvalidAction),
		errors.Is(err, perm_errors.ErrInvalidEntityType),
		errors.Is(err, perm_errors.ErrEntityNotFound),
		errors.Is(err, perm_errors.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, perm_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, perm_errors.ErrForbidden),
		errors.Is(err, perm_errors.ErrImmutableAdminGroup):
		return http.StatusForbidden
	case errors.Is(err, perm_errors.ErrUserNotFound),
		errors.Is(err, perm_errors.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, perm_errors.ErrLockNotAcquired):
		return http.StatusConflict
	case errors.Is(err, perm_errors.ErrStructureUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
