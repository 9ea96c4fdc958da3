package permissions

import "github.com/nordwerk/teamdesk/app/models"

// GrantLayer is one precedence level of the merge. Layers are applied in a
// fixed order; each takes the set produced so far and returns the next one.
type GrantLayer interface {
	Name() string
	Apply(base Set) Set
}

// tenantDefaultsLayer seeds the set with every tenant-wide default pair.
type tenantDefaultsLayer struct {
	defaults []models.TenantPermission
}

func (l tenantDefaultsLayer) Name() string { return "tenant_defaults" }

func (l tenantDefaultsLayer) Apply(base Set) Set {
	out := base.Clone()
	for _, p := range l.defaults {
		out.Add(p.AppKey, p.ScopeKey)
	}
	return out
}

// teamGrantsLayer implements restrictive mode: if the user's teams carry any
// grant rows at all, the set is replaced by just the enabled team grants.
// Disabled rows still count as "has grants" and so still trigger the switch.
// Teams with zero rows leave the incoming set untouched.
type teamGrantsLayer struct {
	grants []models.TeamPermission
}

func (l teamGrantsLayer) Name() string { return "team_grants" }

func (l teamGrantsLayer) Apply(base Set) Set {
	if len(l.grants) == 0 {
		return base
	}
	out := NewSet()
	for _, g := range l.grants {
		if g.Enabled {
			out.Add(g.AppKey, g.ScopeKey)
		}
	}
	return out
}

// userOverridesLayer applies per-user adds and revokes. It always runs last
// and wins over everything below it.
type userOverridesLayer struct {
	overrides []models.UserPermission
}

func (l userOverridesLayer) Name() string { return "user_overrides" }

func (l userOverridesLayer) Apply(base Set) Set {
	out := base.Clone()
	for _, o := range l.overrides {
		if o.Enabled {
			out.Add(o.AppKey, o.ScopeKey)
		} else {
			out.Remove(o.AppKey, o.ScopeKey)
		}
	}
	return out
}

// applyLayers folds the layers over an empty set in order.
func applyLayers(layers []GrantLayer) Set {
	set := NewSet()
	for _, layer := range layers {
		set = layer.Apply(set)
	}
	return set
}
