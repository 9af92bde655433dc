// api/model/neo4j/relationships.go
package perm_neo4j

// Relationship Types
const (
	// RelMemberOf represents the relationship between a user and their groups
	RelMemberOf = "MEMBER_OF"

	// RelAdministers represents the relationship between a group administrator and the group
	RelAdministers = "ADMINISTERS"

	// RelHasPermission represents the relationship between a group and its permission records
	RelHasPermission = "HAS_PERMISSION"
)
