// api/model/structure.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Structure is the physical hierarchy: building -> floor -> room -> device ids.
type Structure map[int64]map[int64]map[int64][]int64

// Contains reports whether the entity exists anywhere in the hierarchy.
func (s Structure) Contains(t EntityType, id int64) bool {
	switch t {
	case EntityBuilding:
		_, ok := s[id]
		return ok
	case EntityFloor:
		for _, floors := range s {
			if _, ok := floors[id]; ok {
				return true
			}
		}
	case EntityRoom:
		for _, floors := range s {
			for _, rooms := range floors {
				if _, ok := rooms[id]; ok {
					return true
				}
			}
		}
	case EntityDevice:
		for _, floors := range s {
			for _, rooms := range floors {
				for _, devices := range rooms {
					for _, d := range devices {
						if d == id {
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// entityID accepts ids encoded either as JSON numbers or as strings.
type entityID int64

func (e *entityID) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid entity id %s: %w", data, err)
	}
	*e = entityID(v)
	return nil
}

func parseKey(k string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entity id %q: %w", k, err)
	}
	return v, nil
}

// UnmarshalJSON normalizes every id of the provider payload to int64.
func (s *Structure) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]map[string][]entityID
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Structure, len(raw))
	for bk, floors := range raw {
		buildingID, err := parseKey(bk)
		if err != nil {
			return err
		}
		out[buildingID] = make(map[int64]map[int64][]int64, len(floors))
		for fk, rooms := range floors {
			floorID, err := parseKey(fk)
			if err != nil {
				return err
			}
			out[buildingID][floorID] = make(map[int64][]int64, len(rooms))
			for rk, devices := range rooms {
				roomID, err := parseKey(rk)
				if err != nil {
					return err
				}
				ids := make([]int64, 0, len(devices))
				for _, d := range devices {
					ids = append(ids, int64(d))
				}
				out[buildingID][floorID][roomID] = ids
			}
		}
	}
	*s = out
	return nil
}
