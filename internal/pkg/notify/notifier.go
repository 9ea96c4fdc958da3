package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/mail"
)

// Mailer abstracts outbound email so tests can capture messages.
type Mailer func(to, subject, body string) error

// Store holds notification rows and the tenant user list for fan-out.
type Store interface {
	CreateNotification(tenantID, userID uint, notificationType, title, message, dataJSON string) error
	ListTenantUsers(tenantID uint) ([]models.User, error)
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) CreateNotification(tenantID, userID uint, notificationType, title, message, dataJSON string) error {
	return models.CreateNotification(s.db, tenantID, userID, notificationType, title, message, dataJSON)
}

func (s *gormStore) ListTenantUsers(tenantID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Where("tenant_id = ?", tenantID).Find(&users).Error
	return users, err
}

// Notifier persists in-app notifications and fans out tenant-wide emails.
// Every path is fire-and-forget: errors are logged, never returned upstream.
type Notifier struct {
	store  Store
	mailer Mailer
}

func NewNotifier(db *gorm.DB) *Notifier {
	if db == nil {
		return &Notifier{}
	}
	return &Notifier{store: &gormStore{db: db}, mailer: mail.SendMail}
}

// NewNotifierWithStore is used by tests to capture rows and outbound mail.
func NewNotifierWithStore(store Store, mailer Mailer) *Notifier {
	return &Notifier{store: store, mailer: mailer}
}

// Notify records one in-app notification for a single user.
func (n *Notifier) Notify(ctx context.Context, tenantID, userID uint, notificationType, title, message string, data interface{}) {
	_ = ctx
	if n == nil || n.store == nil {
		return
	}

	dataJSON := ""
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			dataJSON = string(b)
		}
	}

	if err := n.store.CreateNotification(tenantID, userID, notificationType, title, message, dataJSON); err != nil {
		log.Errorf("[Notify] Failed to store notification %s for tenant %d: %v", notificationType, tenantID, err)
	}
}

// NotifyTenant records one notification per tenant user and sends a single
// email addressed to all tenant user emails joined by comma.
func (n *Notifier) NotifyTenant(ctx context.Context, tenantID uint, notificationType, title, message string, data interface{}) {
	if n == nil || n.store == nil {
		return
	}

	users, err := n.store.ListTenantUsers(tenantID)
	if err != nil {
		log.Errorf("[Notify] Failed to load users for tenant %d: %v", tenantID, err)
		return
	}
	if len(users) == 0 {
		return
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		n.Notify(ctx, tenantID, u.ID, notificationType, title, message, data)
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}

	if len(emails) == 0 || n.mailer == nil {
		return
	}
	if err := n.mailer(strings.Join(emails, ","), title, message); err != nil {
		log.Errorf("[Notify] Failed to send %s mail for tenant %d: %v", notificationType, tenantID, err)
	}
}
