// api/util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
)

type ValidationUtil struct {
	validate   *validator.Validate
	vocabulary model.ActionSet
}

// NewValidationUtil validates requests against the given action vocabulary.
func NewValidationUtil(actions []string) *ValidationUtil {
	return &ValidationUtil{
		validate:   validator.New(),
		vocabulary: model.ActionSetFromStrings(actions),
	}
}

// Vocabulary returns a copy of the known actions.
func (v *ValidationUtil) Vocabulary() model.ActionSet {
	return v.vocabulary.Clone()
}

// ValidateSetPermissions checks the request shape and returns the parsed
// entity type and normalized action set.
func (v *ValidationUtil) ValidateSetPermissions(req model.SetPermissionsRequest) (model.EntityType, model.ActionSet, error) {
	if err := v.validate.Struct(req); err != nil {
		return "", nil, fmt.Errorf("%s: %w", describe(err), perm_errors.ErrInvalidPermissionData)
	}

	actions, err := v.ValidateActions(req.Actions)
	if err != nil {
		return "", nil, err
	}

	entityType, err := model.ParseEntityType(req.EntityType)
	if err != nil {
		return "", nil, err
	}
	return entityType, actions, nil
}

// ValidateActions rejects anything outside the vocabulary.
func (v *ValidationUtil) ValidateActions(values []string) (model.ActionSet, error) {
	actions := model.ActionSetFromStrings(values)
	if unknown := actions.Difference(v.vocabulary); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown actions %v: %w", unknown, perm_errors.ErrInvalidAction)
	}
	return actions, nil
}

func (v *ValidationUtil) ValidateCheckPermission(req model.CheckPermissionRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", describe(err), perm_errors.ErrInvalidPermissionData)
	}
	return nil
}

func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
