package gate

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/audit"
	"github.com/nordwerk/teamdesk/internal/pkg/entitlements"
	"github.com/nordwerk/teamdesk/internal/pkg/permissions"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

// Stable machine-readable rejection codes.
const (
	CodeTrialExpired           = "TRIAL_EXPIRED"
	CodeEnterprisePlanRequired = "ENTERPRISE_PLAN_REQUIRED"
	CodeAppNotEnabled          = "APP_NOT_ENABLED"
	CodeInsufficientScope      = "INSUFFICIENT_SCOPE"
)

const keyEntitlements = "gate_entitlements"

// Gate is the request-time enforcement point combining the entitlement reader
// and the permission resolver.
type Gate struct {
	resolver *permissions.Resolver
	reader   *entitlements.Reader
	auditor  *audit.Recorder
}

func New(resolver *permissions.Resolver, reader *entitlements.Reader, auditor *audit.Recorder) *Gate {
	return &Gate{resolver: resolver, reader: reader, auditor: auditor}
}

func NewFromDB(db *gorm.DB) *Gate {
	return New(
		permissions.NewResolverFromDB(db),
		entitlements.NewReaderFromDB(db),
		audit.NewRecorder(db),
	)
}

// RequireApp returns a middleware enforcing access to one app. Scope check
// uses OR semantics: any one of the given scopes suffices. An empty scope
// list only checks app enablement.
func (g *Gate) RequireApp(appKey string, scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		if !uc.IsLoggedIn || uc.TenantID == 0 || uc.UserID == 0 {
			return unauthorized(c)
		}

		ent, err := g.entitlements(c, uc.TenantID)
		if err != nil {
			return internalError(c, err)
		}

		// Trial gate comes before any app or scope consideration.
		if ent.LifecycleState == models.LIFECYCLE_TRIAL_EXPIRED {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"code":    CodeTrialExpired,
				"message": "Your trial has ended. Upgrade to keep using this workspace.",
			})
		}

		// Individual plan: every non-admin app is implicitly fully granted,
		// admin is never reachable. Stored grant rows are irrelevant here.
		if entitlements.NormalizePlan(ent.Plan) == entitlements.PlanIndividual {
			if appKey == models.APP_ADMIN {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":       "forbidden",
					"detail":      "the admin app is not available on the individual plan",
					"enabledApps": nonAdminApps(),
				})
			}
			return c.Next()
		}

		res, err := g.resolve(c, uc.TenantID, uc.UserID)
		if err != nil {
			return internalError(c, err)
		}

		// Lazy provisioning: first admin access on an enterprise tenant with
		// no admin defaults seeds the default bundle, then re-resolves.
		if appKey == models.APP_ADMIN && !res.HasApp(models.APP_ADMIN) &&
			entitlements.NormalizePlan(ent.Plan) == entitlements.PlanEnterprise {
			seeded, err := g.resolver.EnsureAdminDefaults(c.UserContext(), uc.TenantID)
			if err != nil {
				return internalError(c, err)
			}
			if seeded {
				g.auditor.Record(c.UserContext(), uc.TenantID, uc.UserID,
					models.AUDIT_PERMISSIONS_SEEDED, "tenant_permission", "", fiber.Map{
						"app":  models.APP_ADMIN,
						"rows": permissions.AdminDefaultBundleSize,
					})
				res, err = g.reresolve(c, uc.TenantID, uc.UserID)
				if err != nil {
					return internalError(c, err)
				}
			}
		}

		if !res.HasApp(appKey) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":       "forbidden",
				"detail":      "app is not enabled for this user",
				"enabledApps": res.EnabledApps,
			})
		}

		if !res.HasAnyScope(appKey, scopes) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":           "forbidden",
				"detail":          "insufficient scope",
				"requiredScopes":  scopes,
				"enabledApps":     res.EnabledApps,
				"userPermissions": res.MatchingScopes(appKey, append([]string{}, models.AllScopeKeys...)),
				"roleName":        res.RoleName,
			})
		}

		return c.Next()
	}
}

// RequireEnterprisePlan returns a plan-only middleware protecting whole
// feature areas (team management and friends). It never consults the
// permission resolver and skips the trial gate.
func (g *Gate) RequireEnterprisePlan() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		if !uc.IsLoggedIn || uc.TenantID == 0 || uc.UserID == 0 {
			return unauthorized(c)
		}

		ent, err := g.entitlements(c, uc.TenantID)
		if err != nil {
			return internalError(c, err)
		}

		if !entitlements.IsEnterprise(ent.Plan) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":       "forbidden",
				"detail":      "this feature requires the enterprise plan",
				"code":        CodeEnterprisePlanRequired,
				"currentPlan": ent.Plan,
			})
		}
		return c.Next()
	}
}

// entitlements loads the tenant snapshot once per request.
func (g *Gate) entitlements(c *fiber.Ctx, tenantID uint) (entitlements.Entitlements, error) {
	if cached := c.Locals(keyEntitlements); cached != nil {
		return cached.(entitlements.Entitlements), nil
	}
	ent, err := g.reader.GetEntitlements(c.UserContext(), tenantID)
	if err != nil {
		return ent, err
	}
	c.Locals(keyEntitlements, ent)
	return ent, nil
}

// resolve computes the effective permissions once per request.
func (g *Gate) resolve(c *fiber.Ctx, tenantID, userID uint) (permissions.Resolution, error) {
	if cached := c.Locals(usercontext.KeyResolvedPermissions); cached != nil {
		return cached.(permissions.Resolution), nil
	}
	return g.reresolve(c, tenantID, userID)
}

// reresolve forces a fresh resolution and refreshes the per-request cache.
func (g *Gate) reresolve(c *fiber.Ctx, tenantID, userID uint) (permissions.Resolution, error) {
	res, err := g.resolver.Resolve(c.UserContext(), tenantID, userID)
	if err != nil {
		return res, err
	}
	c.Locals(usercontext.KeyResolvedPermissions, res)
	return res, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	log.Errorf("[Gate] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func nonAdminApps() []string {
	apps := make([]string, 0, len(models.AllAppKeys)-1)
	for _, a := range models.AllAppKeys {
		if a != models.APP_ADMIN {
			apps = append(apps, a)
		}
	}
	return apps
}
