package model

import (
	"github.com/strafeup/permissions/api/model"
)

// GrantRequest asks whether User may assign Actions on one entity. When
// Structure is set the decision is taken over it instead of a fresh fetch.
type GrantRequest struct {
	User       *model.User
	EntityType model.EntityType
	EntityID   int64
	Actions    model.ActionSet
	Structure  model.Structure
}

func (r GrantRequest) Entity() model.EntityKey {
	return model.EntityKey{Type: r.EntityType, ID: r.EntityID}
}

// TreeScope selects which of a user's groups feed a permission tree.
type TreeScope int

const (
	// ScopeMember uses every group the user belongs to.
	ScopeMember TreeScope = iota
	// ScopeGrant uses only the groups the user administers.
	ScopeGrant
)

func ScopeFor(forGrant bool) TreeScope {
	if forGrant {
		return ScopeGrant
	}
	return ScopeMember
}

// GroupIDs returns the group ids of user relevant for the scope.
func (s TreeScope) GroupIDs(user *model.User) []int64 {
	if s == ScopeGrant {
		return user.AdministeredGroupIDs
	}
	return user.GroupIDs
}

func (s TreeScope) String() string {
	if s == ScopeGrant {
		return "grant"
	}
	return "member"
}
