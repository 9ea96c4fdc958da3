package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nordwerk/teamdesk/app/models"
	apiv1 "github.com/nordwerk/teamdesk/internal/api/v1"
	"github.com/nordwerk/teamdesk/internal/pkg/cache"
	"github.com/nordwerk/teamdesk/internal/pkg/database"
	"github.com/nordwerk/teamdesk/internal/pkg/gate"
	"github.com/nordwerk/teamdesk/internal/pkg/jobqueue"
	"github.com/nordwerk/teamdesk/internal/pkg/middleware"
	"github.com/nordwerk/teamdesk/internal/pkg/ratelimit"
	"github.com/nordwerk/teamdesk/internal/pkg/trial"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	db := database.GetDB()
	scheduler := trial.NewScheduler(jobqueue.GetManager().GetQueue())
	apiServer := apiv1.NewAPIServer(db, scheduler)
	accessGate := gate.NewFromDB(db)

	store := ratelimit.NewRedisStore(cache.GetClient(), 5*time.Minute)
	apiLimit := ratelimit.Middleware(ratelimit.New(60, time.Minute, store))
	signupLimit := ratelimit.Middleware(ratelimit.New(10, time.Minute, store))
	adminLimit := ratelimit.Middleware(ratelimit.New(20, time.Minute, store))

	app.Use(middleware.UserContextMiddleware)

	api := app.Group("/api", apiLimit)
	v1 := api.Group("/v1")

	v1.Get("/ping", apiServer.GetPing)

	// Public surface. Webhooks authenticate via signature, not session.
	v1.Post("/signup", signupLimit, apiServer.PostSignup)
	v1.Post("/login", signupLimit, apiServer.PostLogin)
	v1.Post("/billing/webhook/:provider", apiServer.PostBillingWebhook)

	// Session-authenticated surface.
	auth := v1.Group("", middleware.RequireAuth)
	auth.Post("/logout", apiServer.PostLogout)
	auth.Get("/entitlements", apiServer.GetEntitlements)
	auth.Get("/permissions", apiServer.GetPermissions)
	auth.Post("/billing/checkout/confirm", apiServer.PostCheckoutConfirm)
	auth.Get("/notifications", accessGate.RequireApp(models.APP_NOTIFICATIONS, models.SCOPE_READ), apiServer.GetNotifications)
	auth.Post("/notifications/:id/read", accessGate.RequireApp(models.APP_NOTIFICATIONS, models.SCOPE_READ), apiServer.PostNotificationRead)

	// Admin surface. Everything below needs the admin app with the manage
	// scope, which implies an enterprise tenant.
	admin := auth.Group("/admin", adminLimit, accessGate.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE))
	admin.Put("/permissions/defaults", apiServer.PutTenantDefault)
	admin.Delete("/permissions/defaults", apiServer.DeleteTenantDefault)
	admin.Put("/teams/:teamID/permissions", apiServer.PutTeamGrant)
	admin.Delete("/teams/:teamID/permissions", apiServer.DeleteTeamGrant)
	admin.Put("/users/:userID/permissions", apiServer.PutUserOverride)
	admin.Delete("/users/:userID/permissions", apiServer.DeleteUserOverride)
	admin.Put("/users/:userID/role", apiServer.PutUserRole)

	// Team and role management is an enterprise feature regardless of the
	// caller's permission rows.
	enterprise := auth.Group("", accessGate.RequireEnterprisePlan())
	enterprise.Get("/teams", apiServer.GetTeams)
	enterprise.Post("/teams", accessGate.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), apiServer.PostTeam)
	enterprise.Delete("/teams/:teamID", accessGate.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), apiServer.DeleteTeam)
	enterprise.Post("/teams/:teamID/members", accessGate.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), apiServer.PostTeamMember)
	enterprise.Delete("/teams/:teamID/members/:userID", accessGate.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), apiServer.DeleteTeamMember)
	enterprise.Get("/roles", apiServer.GetRoles)
	enterprise.Post("/roles", accessGate.RequireApp(models.APP_ADMIN, models.SCOPE_MANAGE), apiServer.PostRole)
}
