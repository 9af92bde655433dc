// api/model/neo4j/nodes.go
package perm_neo4j

// Node Labels
const (
	// LabelUser represents a user in the system
	LabelUser = "User"

	// LabelGroup represents a group of users
	LabelGroup = "UserGroup"

	// LabelPermissionRecord represents the actions one group holds over one entity
	LabelPermissionRecord = "PermissionRecord"

	// LabelSequence holds integer id counters
	LabelSequence = "Sequence"
)
