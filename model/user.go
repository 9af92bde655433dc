package model

import "time"

// User is an identity resolved from the directory together with its group ids.
type User struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	GroupIDs             []int64   `json:"group_ids"`
	AdministeredGroupIDs []int64   `json:"administered_group_ids"`
	CreatedAt            time.Time `json:"created"`
}

// UserGroup is a named collection of users with at least one administrator.
type UserGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	MemberIDs []int64   `json:"users"`
	AdminIDs  []int64   `json:"admins"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func (g *UserGroup) HasAdmin(userID int64) bool {
	return containsID(g.AdminIDs, userID)
}

func (g *UserGroup) HasMember(userID int64) bool {
	return containsID(g.MemberIDs, userID)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
