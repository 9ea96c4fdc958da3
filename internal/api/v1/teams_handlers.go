package apiv1

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetTeams lists the caller's tenant teams.
func (s *APIServer) GetTeams(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	teams, err := s.repos.Team.ListByTenant(uc.TenantID)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"teams": teams})
}

// PostTeam creates a team in the caller's tenant.
func (s *APIServer) PostTeam(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var req teamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	team := &models.Team{
		TenantID:    uc.TenantID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := team.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.repos.Team.Create(team); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"team": team})
}

// DeleteTeam removes a team and with it the team's grant rows' effect on its
// former members.
func (s *APIServer) DeleteTeam(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	teamID, err := c.ParamsInt("teamID")
	if err != nil || teamID <= 0 {
		return badRequest(c, "invalid team id")
	}

	team, err := s.repos.Team.GetByID(uint(teamID))
	if err != nil || team.TenantID != uc.TenantID {
		return notFound(c, "team not found")
	}
	if err := s.repos.Team.Delete(team.ID); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

type teamMemberRequest struct {
	UserID uint `json:"user_id"`
}

// PostTeamMember adds a user to a team. Adding twice is a no-op.
func (s *APIServer) PostTeamMember(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	teamID, err := c.ParamsInt("teamID")
	if err != nil || teamID <= 0 {
		return badRequest(c, "invalid team id")
	}
	var req teamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	team, err := s.repos.Team.GetByID(uint(teamID))
	if err != nil || team.TenantID != uc.TenantID {
		return notFound(c, "team not found")
	}
	user, err := s.repos.User.GetByID(req.UserID)
	if err != nil || user.TenantID != uc.TenantID {
		return notFound(c, "user not found")
	}

	if err := s.repos.Team.AddMember(team.ID, user.ID); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// DeleteTeamMember removes a user from a team.
func (s *APIServer) DeleteTeamMember(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	teamID, err := c.ParamsInt("teamID")
	if err != nil || teamID <= 0 {
		return badRequest(c, "invalid team id")
	}
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return badRequest(c, "invalid user id")
	}

	team, err := s.repos.Team.GetByID(uint(teamID))
	if err != nil || team.TenantID != uc.TenantID {
		return notFound(c, "team not found")
	}

	if err := s.repos.Team.RemoveMember(team.ID, uint(userID)); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PostRole creates a display role. Roles label users; they carry no
// permissions of their own.
func (s *APIServer) PostRole(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	role := &models.Role{
		TenantID:    uc.TenantID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := role.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := db().Create(role).Error; err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"role": role})
}

// GetRoles lists the tenant's display roles.
func (s *APIServer) GetRoles(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var roles []models.Role
	if err := db().Where("tenant_id = ?", uc.TenantID).Find(&roles).Error; err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"roles": roles})
}

type assignRoleRequest struct {
	RoleID *uint `json:"role_id"`
}

// PutUserRole assigns or clears a user's display role.
func (s *APIServer) PutUserRole(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return badRequest(c, "invalid user id")
	}
	var req assignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := s.repos.User.GetByID(uint(userID))
	if err != nil || user.TenantID != uc.TenantID {
		return notFound(c, "user not found")
	}
	if req.RoleID != nil {
		var role models.Role
		if err := db().First(&role, *req.RoleID).Error; err != nil || role.TenantID != uc.TenantID {
			return notFound(c, "role not found")
		}
	}

	user.RoleID = req.RoleID
	if err := s.repos.User.Update(user); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
}
