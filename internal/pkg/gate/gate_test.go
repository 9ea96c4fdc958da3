package gate

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/audit"
	"github.com/nordwerk/teamdesk/internal/pkg/entitlements"
	"github.com/nordwerk/teamdesk/internal/pkg/permissions"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

type fakePermRepo struct {
	defaults  []models.TenantPermission
	teamIDs   []uint
	grants    []models.TeamPermission
	overrides []models.UserPermission

	seedCalls int
}

func (f *fakePermRepo) GetUserRoleName(userID uint) (string, error) { return "", nil }

func (f *fakePermRepo) ListTenantDefaults(tenantID uint) ([]models.TenantPermission, error) {
	return f.defaults, nil
}

func (f *fakePermRepo) ListTeamIDs(userID uint) ([]uint, error) { return f.teamIDs, nil }

func (f *fakePermRepo) ListTeamGrants(teamIDs []uint) ([]models.TeamPermission, error) {
	return f.grants, nil
}

func (f *fakePermRepo) ListUserOverrides(userID uint) ([]models.UserPermission, error) {
	return f.overrides, nil
}

func (f *fakePermRepo) CountTenantDefaultsForApp(tenantID uint, appKey string) (int64, error) {
	n := int64(0)
	for _, p := range f.defaults {
		if p.AppKey == appKey {
			n++
		}
	}
	return n, nil
}

func (f *fakePermRepo) UpsertTenantDefault(p *models.TenantPermission) error {
	f.seedCalls++
	f.defaults = append(f.defaults, *p)
	return nil
}

type fakeEntRepo struct {
	tenant *models.Tenant
	sub    *models.Subscription
}

func (f *fakeEntRepo) GetTenant(tenantID uint) (*models.Tenant, error) {
	if f.tenant == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.tenant, nil
}

func (f *fakeEntRepo) GetLatestSubscription(tenantID uint) (*models.Subscription, error) {
	if f.sub == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.sub, nil
}

func newTestApp(g *Gate, handler fiber.Handler, loggedIn bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if loggedIn {
			usercontext.SetUserContext(c, usercontext.UserContext{
				TenantID:   1,
				UserID:     1,
				IsLoggedIn: true,
			})
		} else {
			usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		}
		return c.Next()
	})
	app.Get("/app", handler, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func newGate(permRepo *fakePermRepo, entRepo *fakeEntRepo) *Gate {
	return New(
		permissions.NewResolver(permRepo),
		entitlements.NewReader(entRepo),
		audit.NewRecorder(nil),
	)
}

func doRequest(t *testing.T, app *fiber.App) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	return resp.StatusCode, body
}

func TestRequireApp_Unauthorized(t *testing.T) {
	g := newGate(&fakePermRepo{}, &fakeEntRepo{})
	app := newTestApp(g, g.RequireApp(models.APP_CRM), false)

	status, body := doRequest(t, app)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])
}

func TestRequireApp_TrialExpiredBlocksEverything(t *testing.T) {
	entRepo := &fakeEntRepo{
		tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_TRIAL_EXPIRED},
	}
	permRepo := &fakePermRepo{
		defaults: []models.TenantPermission{{TenantID: 1, AppKey: models.APP_CRM, ScopeKey: models.SCOPE_READ}},
	}
	g := newGate(permRepo, entRepo)
	app := newTestApp(g, g.RequireApp(models.APP_CRM, models.SCOPE_READ), true)

	status, body := doRequest(t, app)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, CodeTrialExpired, body["code"])
}

func TestRequireApp_IndividualPlanBypass(t *testing.T) {
	tenant := individualTenant()
	entRepo := &fakeEntRepo{tenant: &tenant}

	t.Run("non-admin apps pass without any grant rows", func(t *testing.T) {
		g := newGate(&fakePermRepo{}, entRepo)
		app := newTestApp(g, g.RequireApp(models.APP_KANBAN, models.SCOPE_MANAGE), true)

		status, _ := doRequest(t, app)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("admin is rejected even with stored grants", func(t *testing.T) {
		permRepo := &fakePermRepo{
			defaults: []models.TenantPermission{{TenantID: 1, AppKey: models.APP_ADMIN, ScopeKey: models.SCOPE_MANAGE}},
		}
		g := newGate(permRepo, entRepo)
		app := newTestApp(g, g.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), true)

		status, body := doRequest(t, app)
		assert.Equal(t, http.StatusForbidden, status)
		enabled, ok := body["enabledApps"].([]interface{})
		require.True(t, ok)
		assert.Len(t, enabled, len(models.AllAppKeys)-1)
		assert.NotContains(t, enabled, models.APP_ADMIN)
	})
}

func individualTenant() models.Tenant {
	return models.Tenant{Plan: models.PLAN_INDIVIDUAL, LifecycleState: models.LIFECYCLE_TRIAL_ACTIVE}
}

func TestRequireApp_EnterpriseAdminAutoSeed(t *testing.T) {
	entRepo := &fakeEntRepo{
		tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_ACTIVE},
	}
	permRepo := &fakePermRepo{}
	g := newGate(permRepo, entRepo)
	app := newTestApp(g, g.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), true)

	status, _ := doRequest(t, app)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, permissions.AdminDefaultBundleSize, permRepo.seedCalls)

	// Second request sees the seeded rows and does not seed again.
	status, _ = doRequest(t, app)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, permissions.AdminDefaultBundleSize, permRepo.seedCalls)
}

func TestRequireApp_AppNotEnabled(t *testing.T) {
	entRepo := &fakeEntRepo{
		tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_ACTIVE},
	}
	permRepo := &fakePermRepo{
		defaults: []models.TenantPermission{{TenantID: 1, AppKey: models.APP_CRM, ScopeKey: models.SCOPE_READ}},
	}
	g := newGate(permRepo, entRepo)
	app := newTestApp(g, g.RequireApp(models.APP_MONEY, models.SCOPE_READ), true)

	status, body := doRequest(t, app)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "app is not enabled for this user", body["detail"])
	assert.Equal(t, []interface{}{"crm"}, body["enabledApps"])
}

func TestRequireApp_ScopeOrSemantics(t *testing.T) {
	entRepo := &fakeEntRepo{
		tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_ACTIVE},
	}
	permRepo := &fakePermRepo{
		defaults: []models.TenantPermission{{TenantID: 1, AppKey: models.APP_CRM, ScopeKey: models.SCOPE_READ}},
	}
	g := newGate(permRepo, entRepo)

	t.Run("any matching scope passes", func(t *testing.T) {
		app := newTestApp(g, g.RequireApp(models.APP_CRM, models.SCOPE_WRITE, models.SCOPE_READ), true)
		status, _ := doRequest(t, app)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("no matching scope is rejected with diagnostics", func(t *testing.T) {
		app := newTestApp(g, g.RequireApp(models.APP_CRM, models.SCOPE_WRITE, models.SCOPE_MANAGE), true)
		status, body := doRequest(t, app)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "insufficient scope", body["detail"])
		assert.Equal(t, []interface{}{"write", "manage"}, body["requiredScopes"])
		assert.Equal(t, []interface{}{"read"}, body["userPermissions"])
	})
}

func TestRequireEnterprisePlan(t *testing.T) {
	t.Run("individual plan is rejected with the current plan", func(t *testing.T) {
		tenant := individualTenant()
		g := newGate(&fakePermRepo{}, &fakeEntRepo{tenant: &tenant})
		app := newTestApp(g, g.RequireEnterprisePlan(), true)

		status, body := doRequest(t, app)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, CodeEnterprisePlanRequired, body["code"])
		assert.Equal(t, "individual", body["currentPlan"])
	})

	t.Run("enterprise passes even when the trial is expired", func(t *testing.T) {
		g := newGate(&fakePermRepo{}, &fakeEntRepo{
			tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_TRIAL_EXPIRED},
		})
		app := newTestApp(g, g.RequireEnterprisePlan(), true)

		status, _ := doRequest(t, app)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("subscription plan casing does not matter", func(t *testing.T) {
		tenant := individualTenant()
		g := newGate(&fakePermRepo{}, &fakeEntRepo{
			tenant: &tenant,
			sub:    &models.Subscription{Plan: " Enterprise "},
		})
		app := newTestApp(g, g.RequireEnterprisePlan(), true)

		status, _ := doRequest(t, app)
		assert.Equal(t, http.StatusOK, status)
	})
}
