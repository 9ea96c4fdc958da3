package permissions

import (
	"context"

	"gorm.io/gorm"
)

// Resolution is the computed capability snapshot for one user. RoleName is
// display-only and never consulted for authorization.
type Resolution struct {
	RoleName    string   `json:"role_name"`
	Effective   Set      `json:"-"`
	Permissions []string `json:"permissions"`
	EnabledApps []string `json:"enabled_apps"`
}

// HasApp reports whether any scope survives for the app.
func (r Resolution) HasApp(appKey string) bool {
	for _, a := range r.EnabledApps {
		if a == appKey {
			return true
		}
	}
	return false
}

// HasAnyScope reports whether at least one of the given scopes is present for
// the app. An empty scope list always passes.
func (r Resolution) HasAnyScope(appKey string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, scope := range scopes {
		if r.Effective.Has(appKey, scope) {
			return true
		}
	}
	return false
}

// MatchingScopes returns which of the requested scopes the user actually
// holds for the app; used in rejection diagnostics.
func (r Resolution) MatchingScopes(appKey string, scopes []string) []string {
	matched := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if r.Effective.Has(appKey, scope) {
			matched = append(matched, scope)
		}
	}
	return matched
}

// Resolver computes effective permissions by folding the grant layers in a
// fixed order: tenant defaults, team grants, user overrides.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver from an injected repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// NewResolverFromDB creates a resolver from a GORM DB handle.
func NewResolverFromDB(db *gorm.DB) *Resolver {
	return NewResolver(NewRepository(db))
}

// Resolve computes the effective permission set for a user within a tenant.
func (r *Resolver) Resolve(ctx context.Context, tenantID, userID uint) (Resolution, error) {
	_ = ctx

	roleName, err := r.repo.GetUserRoleName(userID)
	if err != nil {
		return Resolution{}, err
	}

	defaults, err := r.repo.ListTenantDefaults(tenantID)
	if err != nil {
		return Resolution{}, err
	}

	teamIDs, err := r.repo.ListTeamIDs(userID)
	if err != nil {
		return Resolution{}, err
	}
	teamGrants, err := r.repo.ListTeamGrants(teamIDs)
	if err != nil {
		return Resolution{}, err
	}

	overrides, err := r.repo.ListUserOverrides(userID)
	if err != nil {
		return Resolution{}, err
	}

	effective := applyLayers([]GrantLayer{
		tenantDefaultsLayer{defaults: defaults},
		teamGrantsLayer{grants: teamGrants},
		userOverridesLayer{overrides: overrides},
	})

	return Resolution{
		RoleName:    roleName,
		Effective:   effective,
		Permissions: effective.Keys(),
		EnabledApps: effective.EnabledApps(),
	}, nil
}
