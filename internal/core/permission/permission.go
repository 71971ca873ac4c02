// Package permission holds the typed capability table attached to roles.
//
// The wire and storage form is the JSON object used by the role admin UI:
//
//	{"all": true}
//	{"tasks": {"all": true}, "teams": {"read": true, "create": true}}
//
// Lookups are deny-by-default: a resource or action that is absent is not granted.
package permission

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

type Resource string

const (
	ResourceTasks         Resource = "tasks"
	ResourceTeams         Resource = "teams"
	ResourceUsers         Resource = "users"
	ResourceRoles         Resource = "roles"
	ResourceAnalytics     Resource = "analytics"
	ResourceAdminRequests Resource = "admin_requests"
)

var knownResources = map[Resource]struct{}{
	ResourceTasks:         {},
	ResourceTeams:         {},
	ResourceUsers:         {},
	ResourceRoles:         {},
	ResourceAnalytics:     {},
	ResourceAdminRequests: {},
}

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var knownActions = map[Action]struct{}{
	ActionCreate: {},
	ActionRead:   {},
	ActionUpdate: {},
	ActionDelete: {},
}

const allKey = "all"

func (r Resource) Valid() bool {
	_, ok := knownResources[r]
	return ok
}

func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Grant is the set of actions allowed on one resource.
type Grant struct {
	All     bool
	Actions map[Action]bool
}

func (g Grant) Allows(action Action) bool {
	if g.All {
		return true
	}
	return g.Actions[action]
}

// Set is a role's full capability table.
type Set struct {
	All       bool
	Resources map[Resource]Grant
}

// FullAccess grants every action on every resource.
func FullAccess() Set {
	return Set{All: true}
}

// Allows reports whether the set grants action on resource.
func (s Set) Allows(resource Resource, action Action) bool {
	if s.All {
		return true
	}
	grant, ok := s.Resources[resource]
	if !ok {
		return false
	}
	return grant.Allows(action)
}

// With returns a copy of s that also allows the given actions on resource.
// Calling it without actions grants the whole resource.
func (s Set) With(resource Resource, actions ...Action) Set {
	out := s.clone()
	g := out.Resources[resource]
	if len(actions) == 0 {
		g.All = true
	} else {
		actionMap := make(map[Action]bool, len(g.Actions)+len(actions))
		for a, v := range g.Actions {
			actionMap[a] = v
		}
		for _, a := range actions {
			actionMap[a] = true
		}
		g.Actions = actionMap
	}
	out.Resources[resource] = g
	return out
}

func (s Set) clone() Set {
	out := Set{All: s.All, Resources: make(map[Resource]Grant, len(s.Resources))}
	for r, g := range s.Resources {
		actions := make(map[Action]bool, len(g.Actions))
		for a, v := range g.Actions {
			actions[a] = v
		}
		out.Resources[r] = Grant{All: g.All, Actions: actions}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Resources)+1)
	if s.All {
		out[allKey] = true
	}
	for r, g := range s.Resources {
		entry := make(map[string]bool, len(g.Actions)+1)
		if g.All {
			entry[allKey] = true
		}
		for a, v := range g.Actions {
			if v {
				entry[string(a)] = true
			}
		}
		if len(entry) > 0 {
			out[string(r)] = entry
		}
	}
	return json.Marshal(out)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse decodes the JSON form, rejecting unknown resources, actions and non-boolean flags.
func Parse(data []byte) (Set, error) {
	set := Set{Resources: map[Resource]Grant{}}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return set, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Set{}, fmt.Errorf("permissions must be a JSON object: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		if key == allKey {
			var all bool
			if err := json.Unmarshal(value, &all); err != nil {
				return Set{}, fmt.Errorf("permissions.all must be a boolean")
			}
			set.All = all
			continue
		}

		resource := Resource(key)
		if !resource.Valid() {
			return Set{}, fmt.Errorf("unknown permission resource %q", key)
		}

		var blanket bool
		if err := json.Unmarshal(value, &blanket); err == nil {
			if blanket {
				set.Resources[resource] = Grant{All: true}
			}
			continue
		}

		var actions map[string]bool
		if err := json.Unmarshal(value, &actions); err != nil {
			return Set{}, fmt.Errorf("permissions.%s must be a boolean or an object of booleans", key)
		}

		grant := Grant{Actions: map[Action]bool{}}
		for name, allowed := range actions {
			if name == allKey {
				grant.All = allowed
				continue
			}
			action := Action(name)
			if !action.Valid() {
				return Set{}, fmt.Errorf("unknown action %q for resource %q", name, key)
			}
			if allowed {
				grant.Actions[action] = true
			}
		}
		set.Resources[resource] = grant
	}

	return set, nil
}

// Value stores the set as JSON text.
func (s Set) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the JSON form from a text or jsonb column.
func (s *Set) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = Set{Resources: map[Resource]Grant{}}
		return nil
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into permission.Set", src)
	}
}
