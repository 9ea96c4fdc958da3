package apiv1

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/app/repository"
	"github.com/nordwerk/teamdesk/internal/pkg/audit"
	"github.com/nordwerk/teamdesk/internal/pkg/billing"
	"github.com/nordwerk/teamdesk/internal/pkg/database"
	"github.com/nordwerk/teamdesk/internal/pkg/entitlements"
	"github.com/nordwerk/teamdesk/internal/pkg/permissions"
	"github.com/nordwerk/teamdesk/internal/pkg/session"
	"github.com/nordwerk/teamdesk/internal/pkg/trial"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

// APIServer carries the services behind the JSON API.
type APIServer struct {
	repos     *repository.Repositories
	resolver  *permissions.Resolver
	reader    *entitlements.Reader
	billing   *billing.Service
	scheduler *trial.Scheduler
	auditor   *audit.Recorder
}

// NewAPIServer wires the server against the global DB handle and job queue.
func NewAPIServer(db *gorm.DB, scheduler *trial.Scheduler) *APIServer {
	return &APIServer{
		repos:     repository.NewRepositories(db),
		resolver:  permissions.NewResolverFromDB(db),
		reader:    entitlements.NewReaderFromDB(db),
		billing:   billing.NewServiceFromDB(db),
		scheduler: scheduler,
		auditor:   audit.NewRecorder(db),
	}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

type signupRequest struct {
	TenantName string `json:"tenant_name"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// PostSignup creates a tenant with its owner user, fixes the trial window and
// arms the three lifecycle jobs.
func (s *APIServer) PostSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	tenant := &models.Tenant{
		Name: strings.TrimSpace(req.TenantName),
		Slug: strings.ToLower(strings.TrimSpace(req.Slug)),
		Plan: models.PLAN_INDIVIDUAL,
	}
	tenant.StartTrial(time.Now())
	if err := tenant.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.repos.Tenant.Create(tenant); err != nil {
		return badRequest(c, "workspace slug is already taken")
	}

	user, err := models.CreateUser(tenant.ID, req.Name, req.Email, req.Password)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.repos.User.Create(user); err != nil {
		return badRequest(c, "email is already registered")
	}

	if err := s.scheduler.ScheduleTrialJobs(tenant); err != nil {
		// The tenant exists; lifecycle jobs can be re-armed later.
		log.Errorf("[API] Failed to schedule trial jobs for tenant %d: %v", tenant.ID, err)
	}

	if err := s.logIn(c, tenant, user); err != nil {
		log.Errorf("[API] Failed to create session after signup: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"tenant": tenant,
		"user":   user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostLogin authenticates a user and opens a session.
func (s *APIServer) PostLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := s.repos.User.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid credentials",
		})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "account disabled",
		})
	}

	tenant, err := s.repos.Tenant.GetByID(user.TenantID)
	if err != nil {
		return internalError(c, err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repos.User.Update(user); err != nil {
		log.Warnf("[API] Could not update last login for user %d: %v", user.ID, err)
	}

	if err := s.logIn(c, tenant, user); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
}

// PostLogout destroys the current session.
func (s *APIServer) PostLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// GetEntitlements returns the caller's tenant quota and lifecycle snapshot.
func (s *APIServer) GetEntitlements(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	ent, err := s.reader.GetEntitlements(c.UserContext(), uc.TenantID)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ent)
}

// GetPermissions returns the caller's resolved capability set.
func (s *APIServer) GetPermissions(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	res, err := s.resolver.Resolve(c.UserContext(), uc.TenantID, uc.UserID)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (s *APIServer) logIn(c *fiber.Ctx, tenant *models.Tenant, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyTenantID, tenant.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set("tenant_plan", tenant.Plan)
	return sess.Save()
}

func badRequest(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "bad request",
		"detail": detail,
	})
}

func internalError(c *fiber.Ctx, err error) error {
	log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func db() *gorm.DB {
	return database.GetDB()
}
