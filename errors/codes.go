package errors

import "errors"

// Code returns the machine-readable reason string for a known error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAction):
		return "invalid_action"
	case errors.Is(err, ErrInvalidEntityType):
		return "invalid_entity_type"
	case errors.Is(err, ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, ErrInvalidPermissionData):
		return "invalid_permission_data"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrGroupNotFound):
		return "group_not_found"
	case errors.Is(err, ErrImmutableAdminGroup):
		return "immutable_admin_group"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrStructureUnavailable):
		return "structure_unavailable"
	case errors.Is(err, ErrLockNotAcquired):
		return "concurrent_modification"
	case errors.Is(err, ErrDatabaseOperation):
		return "database_error"
	default:
		return "internal_error"
	}
}
