// api/model/tree.go
package model

import "encoding/json"

// TreeNode is one entity of a PermissionTree. Permissions is never nil.
type TreeNode struct {
	ID          int64
	Kind        EntityType
	Permissions ActionSet
	Children    map[int64]*TreeNode
}

func newTreeNode(kind EntityType, id int64) *TreeNode {
	n := &TreeNode{ID: id, Kind: kind, Permissions: NewActionSet()}
	if kind != EntityDevice {
		n.Children = make(map[int64]*TreeNode)
	}
	return n
}

// Walk visits n and all of its descendants, parents before children.
func (n *TreeNode) Walk(fn func(*TreeNode)) {
	stack := []*TreeNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for _, child := range cur.Children {
			stack = append(stack, child)
		}
	}
}

func (n *TreeNode) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"permissions": n.Permissions}
	if key := n.Kind.ChildKey(); key != "" {
		children := n.Children
		if children == nil {
			children = map[int64]*TreeNode{}
		}
		out[key] = children
	}
	return json.Marshal(out)
}

// PermissionTree mirrors a Structure; every node carries its accumulated actions.
type PermissionTree struct {
	Buildings map[int64]*TreeNode
}

// NewPermissionTree shapes an empty tree exactly like s.
func NewPermissionTree(s Structure) *PermissionTree {
	tree := &PermissionTree{Buildings: make(map[int64]*TreeNode, len(s))}
	for buildingID, floors := range s {
		building := newTreeNode(EntityBuilding, buildingID)
		for floorID, rooms := range floors {
			floor := newTreeNode(EntityFloor, floorID)
			for roomID, devices := range rooms {
				room := newTreeNode(EntityRoom, roomID)
				for _, deviceID := range devices {
					room.Children[deviceID] = newTreeNode(EntityDevice, deviceID)
				}
				floor.Children[roomID] = room
			}
			building.Children[floorID] = floor
		}
		tree.Buildings[buildingID] = building
	}
	return tree
}

// Find locates a node: buildings by key, lower levels by scanning the level
// above. The search never goes deeper than the requested kind.
func (t *PermissionTree) Find(kind EntityType, id int64) (*TreeNode, bool) {
	depth := kind.Depth()
	if depth < 0 {
		return nil, false
	}
	if depth == 0 {
		n, ok := t.Buildings[id]
		return n, ok
	}
	level := make([]*TreeNode, 0, len(t.Buildings))
	for _, b := range t.Buildings {
		level = append(level, b)
	}
	for d := 1; d < depth; d++ {
		var next []*TreeNode
		for _, n := range level {
			for _, child := range n.Children {
				next = append(next, child)
			}
		}
		level = next
	}
	for _, parent := range level {
		if n, ok := parent.Children[id]; ok {
			return n, true
		}
	}
	return nil, false
}

func (t *PermissionTree) MarshalJSON() ([]byte, error) {
	if t == nil || t.Buildings == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t.Buildings)
}
