package repository

import (
	"github.com/nordwerk/teamdesk/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a team repository backed by GORM
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepository) GetByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListByTenant(tenantID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.Where("tenant_id = ?", tenantID).Find(&teams).Error
	return teams, err
}

func (r *teamRepository) AddMember(teamID, userID uint) error {
	member := &models.TeamMember{TeamID: teamID, UserID: userID}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "team_id"},
			{Name: "user_id"},
		},
		DoNothing: true,
	}).Create(member).Error
}

func (r *teamRepository) RemoveMember(teamID, userID uint) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// Delete removes a team together with its memberships and grant rows. The
// grant rows must go with the team, otherwise they would keep counting for
// restrictive mode on the former members.
func (r *teamRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, id).Error
	})
}
