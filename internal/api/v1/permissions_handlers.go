package apiv1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

type grantRequest struct {
	AppKey   string `json:"app_key"`
	ScopeKey string `json:"scope_key"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

func (r *grantRequest) validate() (string, bool) {
	if !models.IsKnownApp(r.AppKey) {
		return "unknown app key", false
	}
	if !models.IsKnownScope(r.ScopeKey) {
		return "unknown scope key", false
	}
	return "", true
}

func (r *grantRequest) enabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// PutTenantDefault grants an app/scope pair tenant-wide. The default layer has
// no enabled flag; presence of the row is the grant.
func (s *APIServer) PutTenantDefault(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg, ok := req.validate(); !ok {
		return badRequest(c, msg)
	}

	row := models.TenantPermission{
		TenantID: uc.TenantID,
		AppKey:   req.AppKey,
		ScopeKey: req.ScopeKey,
	}
	err := db().Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return internalError(c, err)
	}

	s.auditPermissionChange(c, "tenant_default", "granted", uc.TenantID, req)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// DeleteTenantDefault revokes a tenant-wide default grant.
func (s *APIServer) DeleteTenantDefault(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg, ok := req.validate(); !ok {
		return badRequest(c, msg)
	}

	err := db().Where("tenant_id = ? AND app_key = ? AND scope_key = ?",
		uc.TenantID, req.AppKey, req.ScopeKey).
		Delete(&models.TenantPermission{}).Error
	if err != nil {
		return internalError(c, err)
	}

	s.auditPermissionChange(c, "tenant_default", "revoked", uc.TenantID, req)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// PutTeamGrant upserts a team grant row. Note that a disabled row still flips
// the team into restrictive mode.
func (s *APIServer) PutTeamGrant(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	teamID, err := c.ParamsInt("teamID")
	if err != nil || teamID <= 0 {
		return badRequest(c, "invalid team id")
	}
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg, ok := req.validate(); !ok {
		return badRequest(c, msg)
	}

	team, err := s.repos.Team.GetByID(uint(teamID))
	if err != nil || team.TenantID != uc.TenantID {
		return notFound(c, "team not found")
	}

	row := models.TeamPermission{
		TeamID:   team.ID,
		AppKey:   req.AppKey,
		ScopeKey: req.ScopeKey,
		Enabled:  req.enabled(),
	}
	err = db().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "app_key"}, {Name: "scope_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled"}),
	}).Create(&row).Error
	if err != nil {
		return internalError(c, err)
	}

	s.auditPermissionChange(c, "team_grant", "upserted", team.ID, req)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// DeleteTeamGrant removes a team grant row entirely. Removing the last row
// takes the team out of restrictive mode.
func (s *APIServer) DeleteTeamGrant(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	teamID, err := c.ParamsInt("teamID")
	if err != nil || teamID <= 0 {
		return badRequest(c, "invalid team id")
	}
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg, ok := req.validate(); !ok {
		return badRequest(c, msg)
	}

	team, err := s.repos.Team.GetByID(uint(teamID))
	if err != nil || team.TenantID != uc.TenantID {
		return notFound(c, "team not found")
	}

	err = db().Where("team_id = ? AND app_key = ? AND scope_key = ?",
		team.ID, req.AppKey, req.ScopeKey).
		Delete(&models.TeamPermission{}).Error
	if err != nil {
		return internalError(c, err)
	}

	s.auditPermissionChange(c, "team_grant", "deleted", team.ID, req)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// PutUserOverride upserts a per-user override. Enabled adds on top of every
// other layer, disabled revokes across every other layer.
func (s *APIServer) PutUserOverride(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return badRequest(c, "invalid user id")
	}
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg, ok := req.validate(); !ok {
		return badRequest(c, msg)
	}

	user, err := s.repos.User.GetByID(uint(userID))
	if err != nil || user.TenantID != uc.TenantID {
		return notFound(c, "user not found")
	}

	row := models.UserPermission{
		UserID:   user.ID,
		AppKey:   req.AppKey,
		ScopeKey: req.ScopeKey,
		Enabled:  req.enabled(),
	}
	err = db().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "app_key"}, {Name: "scope_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled"}),
	}).Create(&row).Error
	if err != nil {
		return internalError(c, err)
	}

	s.auditPermissionChange(c, "user_override", "upserted", user.ID, req)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// DeleteUserOverride removes a per-user override, letting the lower layers
// decide again.
func (s *APIServer) DeleteUserOverride(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return badRequest(c, "invalid user id")
	}
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg, ok := req.validate(); !ok {
		return badRequest(c, msg)
	}

	user, err := s.repos.User.GetByID(uint(userID))
	if err != nil || user.TenantID != uc.TenantID {
		return notFound(c, "user not found")
	}

	err = db().Where("user_id = ? AND app_key = ? AND scope_key = ?",
		user.ID, req.AppKey, req.ScopeKey).
		Delete(&models.UserPermission{}).Error
	if err != nil {
		return internalError(c, err)
	}

	s.auditPermissionChange(c, "user_override", "deleted", user.ID, req)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func (s *APIServer) auditPermissionChange(c *fiber.Ctx, layer, action string, targetID uint, req grantRequest) {
	uc := usercontext.GetUserContext(c)
	s.auditor.Record(c.UserContext(), uc.TenantID, uc.UserID,
		models.AUDIT_PERMISSION_CHANGED, layer, strconv.FormatUint(uint64(targetID), 10), fiber.Map{
			"action":    action,
			"app_key":   req.AppKey,
			"scope_key": req.ScopeKey,
			"enabled":   req.enabled(),
		})
}

func notFound(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":  "not found",
		"detail": detail,
	})
}
