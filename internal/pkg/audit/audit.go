package audit

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
)

// Recorder appends audit rows. Failures are logged and swallowed so a broken
// audit channel never blocks the operation that triggered it.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record writes one audit entry. diff may be any JSON-serializable value.
func (r *Recorder) Record(ctx context.Context, tenantID, actorID uint, action, targetType, targetID string, diff interface{}) {
	_ = ctx
	if r == nil || r.db == nil {
		return
	}

	diffJSON := ""
	if diff != nil {
		if b, err := json.Marshal(diff); err == nil {
			diffJSON = string(b)
		} else {
			log.Warnf("[Audit] Could not marshal diff for action %s: %v", action, err)
		}
	}

	entry := models.AuditLog{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		DiffJSON:   diffJSON,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		log.Errorf("[Audit] Failed to record %s for tenant %d: %v", action, tenantID, err)
	}
}
