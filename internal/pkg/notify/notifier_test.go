package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordwerk/teamdesk/app/models"
)

type storedNotification struct {
	tenantID uint
	userID   uint
	typ      string
	title    string
	message  string
	dataJSON string
}

type fakeStore struct {
	users     []models.User
	usersErr  error
	createErr error
	stored    []storedNotification
}

func (f *fakeStore) CreateNotification(tenantID, userID uint, notificationType, title, message, dataJSON string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.stored = append(f.stored, storedNotification{
		tenantID: tenantID,
		userID:   userID,
		typ:      notificationType,
		title:    title,
		message:  message,
		dataJSON: dataJSON,
	})
	return nil
}

func (f *fakeStore) ListTenantUsers(tenantID uint) ([]models.User, error) {
	return f.users, f.usersErr
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func capturingMailer(sent *[]sentMail) Mailer {
	return func(to, subject, body string) error {
		*sent = append(*sent, sentMail{to: to, subject: subject, body: body})
		return nil
	}
}

func TestNotifyStoresOneRow(t *testing.T) {
	store := &fakeStore{}
	n := NewNotifierWithStore(store, nil)

	n.Notify(context.Background(), 1, 7, models.NOTIFICATION_SYSTEM, "Hello", "Body", map[string]interface{}{"k": "v"})

	require.Len(t, store.stored, 1)
	assert.Equal(t, uint(1), store.stored[0].tenantID)
	assert.Equal(t, uint(7), store.stored[0].userID)
	assert.Equal(t, models.NOTIFICATION_SYSTEM, store.stored[0].typ)
	assert.JSONEq(t, `{"k":"v"}`, store.stored[0].dataJSON)
}

func TestNotifyTenantFansOutOnceToAllUsers(t *testing.T) {
	store := &fakeStore{
		users: []models.User{
			{ID: 1, TenantID: 1, Email: "a@x"},
			{ID: 2, TenantID: 1, Email: "b@x"},
			{ID: 3, TenantID: 1, Email: "c@x"},
		},
	}
	var sent []sentMail
	n := NewNotifierWithStore(store, capturingMailer(&sent))

	n.NotifyTenant(context.Background(), 1, models.NOTIFICATION_TRIAL_ENDED, "Your trial has ended", "Upgrade now.", nil)

	// One row per tenant user, one email addressed to all of them.
	require.Len(t, store.stored, 3)
	for i, userID := range []uint{1, 2, 3} {
		assert.Equal(t, userID, store.stored[i].userID)
		assert.Equal(t, models.NOTIFICATION_TRIAL_ENDED, store.stored[i].typ)
	}
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x,b@x,c@x", sent[0].to)
	assert.Equal(t, "Your trial has ended", sent[0].subject)
	assert.Equal(t, "Upgrade now.", sent[0].body)
}

func TestNotifyTenantSkipsUsersWithoutEmail(t *testing.T) {
	store := &fakeStore{
		users: []models.User{
			{ID: 1, TenantID: 1, Email: "a@x"},
			{ID: 2, TenantID: 1, Email: ""},
		},
	}
	var sent []sentMail
	n := NewNotifierWithStore(store, capturingMailer(&sent))

	n.NotifyTenant(context.Background(), 1, models.NOTIFICATION_DELETION_WARNING, "Warning", "Body", nil)

	// Both users still get their in-app row.
	assert.Len(t, store.stored, 2)
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x", sent[0].to)
}

func TestNotifyTenantNoUsersSendsNothing(t *testing.T) {
	store := &fakeStore{}
	var sent []sentMail
	n := NewNotifierWithStore(store, capturingMailer(&sent))

	n.NotifyTenant(context.Background(), 1, models.NOTIFICATION_SYSTEM, "Title", "Body", nil)

	assert.Empty(t, store.stored)
	assert.Empty(t, sent)
}

func TestNotifierSwallowsErrors(t *testing.T) {
	store := &fakeStore{
		users:     []models.User{{ID: 1, TenantID: 1, Email: "a@x"}},
		createErr: errors.New("insert failed"),
	}
	n := NewNotifierWithStore(store, func(to, subject, body string) error {
		return errors.New("smtp down")
	})

	// Neither path panics or propagates.
	n.Notify(context.Background(), 1, 1, models.NOTIFICATION_SYSTEM, "Title", "Body", nil)
	n.NotifyTenant(context.Background(), 1, models.NOTIFICATION_SYSTEM, "Title", "Body", nil)

	var nilNotifier *Notifier
	nilNotifier.NotifyTenant(context.Background(), 1, models.NOTIFICATION_SYSTEM, "Title", "Body", nil)
}
