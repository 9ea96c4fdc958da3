package permissions

import (
	"context"

	"github.com/nordwerk/teamdesk/app/models"
)

// adminDefaultBundle is the grant set provisioned for an enterprise tenant on
// first admin access: admin read+manage plus read on every workspace app.
var adminDefaultBundle = []struct {
	AppKey   string
	ScopeKey string
}{
	{models.APP_ADMIN, models.SCOPE_READ},
	{models.APP_ADMIN, models.SCOPE_MANAGE},
	{models.APP_CRM, models.SCOPE_READ},
	{models.APP_KANBAN, models.SCOPE_READ},
	{models.APP_EMAIL, models.SCOPE_READ},
	{models.APP_MONEY, models.SCOPE_READ},
	{models.APP_TODOS, models.SCOPE_READ},
	{models.APP_FILES, models.SCOPE_READ},
}

// AdminDefaultBundleSize is the exact number of rows EnsureAdminDefaults
// provisions.
const AdminDefaultBundleSize = 8

// EnsureAdminDefaults provisions the admin default bundle for a tenant unless
// admin tenant-defaults already exist. It returns whether any seeding was
// attempted. Safe to call concurrently: each row is a create-if-absent
// upsert, so two racing callers converge on the same row set.
func (r *Resolver) EnsureAdminDefaults(ctx context.Context, tenantID uint) (bool, error) {
	_ = ctx

	n, err := r.repo.CountTenantDefaultsForApp(tenantID, models.APP_ADMIN)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for _, grant := range adminDefaultBundle {
		p := &models.TenantPermission{
			TenantID: tenantID,
			AppKey:   grant.AppKey,
			ScopeKey: grant.ScopeKey,
		}
		if err := r.repo.UpsertTenantDefault(p); err != nil {
			return true, err
		}
	}
	return true, nil
}
