// api/model/action.go
package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// Action is a permission verb such as "read".
type Action string

// ActionSet is an unordered set of actions.
type ActionSet map[Action]struct{}

func NewActionSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	s.Add(actions...)
	return s
}

// ActionSetFromStrings lowercases and trims every entry.
func ActionSetFromStrings(values []string) ActionSet {
	s := make(ActionSet, len(values))
	for _, v := range values {
		s.Add(Action(strings.ToLower(strings.TrimSpace(v))))
	}
	return s
}

func (s ActionSet) Add(actions ...Action) {
	for _, a := range actions {
		s[a] = struct{}{}
	}
}

// Union adds every action of other to s.
func (s ActionSet) Union(other ActionSet) {
	for a := range other {
		s[a] = struct{}{}
	}
}

func (s ActionSet) Contains(a Action) bool {
	_, ok := s[a]
	return ok
}

func (s ActionSet) IsSubsetOf(other ActionSet) bool {
	for a := range s {
		if !other.Contains(a) {
			return false
		}
	}
	return true
}

func (s ActionSet) Equal(other ActionSet) bool {
	return len(s) == len(other) && s.IsSubsetOf(other)
}

// Difference returns the actions of s missing from other, sorted.
func (s ActionSet) Difference(other ActionSet) []Action {
	var missing []Action
	for _, a := range s.Sorted() {
		if !other.Contains(a) {
			missing = append(missing, a)
		}
	}
	return missing
}

func (s ActionSet) Clone() ActionSet {
	c := make(ActionSet, len(s))
	c.Union(s)
	return c
}

func (s ActionSet) Sorted() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s ActionSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, a := range s.Sorted() {
		out = append(out, string(a))
	}
	return out
}

func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *ActionSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = ActionSetFromStrings(values)
	return nil
}
