// api/model/neo4j/attributes.go
package perm_neo4j

// Attribute Keys
const (
	AttrID   = "id"
	AttrName = "name"

	AttrEmail     = "email"
	AttrFirstName = "firstName"
	AttrLastName  = "lastName"

	// AttrUserGroupID, AttrEntityType and AttrEntityID together identify a permission record
	AttrUserGroupID   = "userGroupID"
	AttrEntityType    = "entityType"
	AttrEntityID      = "entityID"
	AttrPermissionSet = "permissionSet"

	// AttrValue holds the last issued value of a sequence
	AttrValue = "value"

	AttrCreatedAt = "createdAt"
	AttrUpdatedAt = "updatedAt"
)
