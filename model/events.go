package model

// PermissionChange describes one applied SetPermissions call. Old is nil when
// the record was created by the call.
type PermissionChange struct {
	ActingUserID int64             `json:"acting_user_id"`
	Old          *PermissionRecord `json:"old,omitempty"`
	New          PermissionRecord  `json:"new"`
}

// Created reports whether the change created the record.
func (c PermissionChange) Created() bool {
	return c.Old == nil
}

// GroupDeletion describes a deleted group and how many records went with it.
// CascadePending is set when the group is gone but its records still have to
// be removed.
type GroupDeletion struct {
	ActingUserID   int64  `json:"acting_user_id"`
	GroupID        int64  `json:"group_id"`
	GroupName      string `json:"group_name"`
	DeletedRecords int64  `json:"deleted_records"`
	CascadePending bool   `json:"cascade_pending,omitempty"`
}
