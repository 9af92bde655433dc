package engine

import (
	"sort"

	"go.uber.org/zap"

	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
)

// BuildTree returns a tree shaped like s where every node carries the union of
// the actions granted on it and on all of its ancestors. Neither argument is
// modified, so equal inputs always produce equal trees.
func BuildTree(s model.Structure, records []model.PermissionRecord) *model.PermissionTree {
	tree := model.NewPermissionTree(s)
	index := indexTree(tree)

	merged := mergeRecords(records)
	buckets := make(map[model.EntityType][]model.EntityKey, len(model.EntityTypes))
	for key := range merged {
		buckets[key.Type] = append(buckets[key.Type], key)
	}

	// Buildings first, devices last.
	for _, entityType := range model.EntityTypes {
		keys := buckets[entityType]
		sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })

		for _, key := range keys {
			node, ok := index[key]
			if !ok {
				logger.Debug("Skipping grant for entity missing from structure",
					zap.String("entity", key.String()))
				continue
			}
			actions := merged[key]
			node.Walk(func(n *model.TreeNode) {
				n.Permissions.Union(actions)
			})
		}
	}

	return tree
}

// mergeRecords unions the action sets of records sharing an entity, which
// happens when several of the user's groups hold grants on the same node.
func mergeRecords(records []model.PermissionRecord) map[model.EntityKey]model.ActionSet {
	merged := make(map[model.EntityKey]model.ActionSet, len(records))
	for _, r := range records {
		key := r.Entity()
		set, ok := merged[key]
		if !ok {
			set = model.NewActionSet()
			merged[key] = set
		}
		set.Union(r.PermissionSet)
	}
	return merged
}

func indexTree(tree *model.PermissionTree) map[model.EntityKey]*model.TreeNode {
	index := make(map[model.EntityKey]*model.TreeNode)
	for _, building := range tree.Buildings {
		building.Walk(func(n *model.TreeNode) {
			index[model.EntityKey{Type: n.Kind, ID: n.ID}] = n
		})
	}
	return index
}
