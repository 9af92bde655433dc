package model

import "github.com/strafeup/permissions/api/model"

// Decision reasons.
const (
	ReasonGlobalAdmin      = "global_admin"
	ReasonCovered          = "covered_by_grants"
	ReasonMissingActions   = "missing_actions"
	ReasonUnknownAction    = "unknown_action"
	ReasonEntityNotLocated = "entity_not_located"
)

// GrantDecision is the outcome of a grant authorization check.
type GrantDecision struct {
	Allowed bool           `json:"allowed"`
	Reason  string         `json:"reason"`
	Missing []model.Action `json:"missing,omitempty"`
	// Effective holds the caller's accumulated actions at the entity when it was located.
	Effective model.ActionSet `json:"effective,omitempty"`
}
