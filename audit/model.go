// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Audit actions.
const (
	ActionSetPermissions = "SET_PERMISSIONS"
	ActionDeleteGroup    = "DELETE_GROUP"
)

type AuditLog struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	UserID        int64           `json:"user_id"`
	Action        string          `json:"action"`
	UserGroupID   int64           `json:"user_group_id"`
	ResourceID    string          `json:"resource_id"`
	AccessGranted bool            `json:"access_granted"`
	Reason        string          `json:"reason,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}

// Query filters audit entries; zero values are ignored.
type Query struct {
	From        time.Time
	To          time.Time
	UserID      int64
	UserGroupID int64
	ResourceID  string
	Size        int
}
