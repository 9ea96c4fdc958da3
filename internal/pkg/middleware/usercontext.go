package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/database"
	"github.com/nordwerk/teamdesk/internal/pkg/session"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete caller identity for every
// request. This centralizes session handling and eliminates duplication in
// the handlers.
func UserContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		// On error: set as anonymous caller
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	tenantID := sess.Get(usercontext.KeyTenantID)
	if userID == nil || tenantID == nil {
		// Anonymous caller - no session data
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)

	// Determine plan with session-first strategy
	plan := session.GetSessionValue(c, "tenant_plan")
	if plan == "" {
		plan = models.PLAN_INDIVIDUAL
		if db := database.GetDB(); db != nil {
			var tenant models.Tenant
			if err := db.First(&tenant, toUint(tenantID)).Error; err == nil && tenant.Plan != "" {
				plan = tenant.Plan
				_ = session.SetSessionValue(c, "tenant_plan", plan)
			}
		}
	}

	usercontext.SetUserContext(c, usercontext.UserContext{
		TenantID:   toUint(tenantID),
		UserID:     toUint(userID),
		Username:   username,
		IsLoggedIn: true,
		Plan:       plan,
	})
	c.Locals(usercontext.KeyFromProtected, true)
	return c.Next()
}

// toUint normalizes session values that may arrive as uint or string.
func toUint(v interface{}) uint {
	switch val := v.(type) {
	case uint:
		return val
	case int:
		return uint(val)
	case int64:
		return uint(val)
	case float64:
		return uint(val)
	case string:
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return uint(n)
		}
	}
	return 0
}
