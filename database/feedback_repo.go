package database

import (
	"github.com/agroreq/export-requirements-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db}
}

// Add inserts a new feedback entry
func (r *FeedbackRepo) Add(feedback *models.Feedback) error {
	return r.db.Omit("Profile", "Requirement").Create(feedback).Error
}

// FindByID returns one feedback entry with the submitting profile preloaded
func (r *FeedbackRepo) FindByID(id int) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.Preload("Profile").First(&feedback, id).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

// feedbackOrderClause maps the sort parameter to a whitelisted ORDER BY
// expression. Unknown values fall back to newest first.
func feedbackOrderClause(sort string) string {
	if sort == "oldest" {
		return "created_at ASC"
	}
	return "created_at DESC"
}

// FindFiltered returns all feedback, optionally narrowed to the country
// and/or crop of the requirement it is attached to. Admin view.
func (r *FeedbackRepo) FindFiltered(countryID, cropID int, sort string) ([]*models.Feedback, error) {
	query := r.db.
		Preload("Profile").
		Preload("Requirement").
		Preload("Requirement.Country").
		Preload("Requirement.Crop").
		Order(feedbackOrderClause(sort))

	if countryID != 0 || cropID != 0 {
		query = query.Joins("JOIN requirements ON requirements.id = feedbacks.requirement_id")
		if countryID != 0 {
			query = query.Where("requirements.country_id = ?", countryID)
		}
		if cropID != 0 {
			query = query.Where("requirements.crop_id = ?", cropID)
		}
	}

	var feedbacks []*models.Feedback
	err := query.Find(&feedbacks).Error
	return feedbacks, err
}

// FindByUser returns one user's own feedback, newest first
func (r *FeedbackRepo) FindByUser(userID uuid.UUID) ([]*models.Feedback, error) {
	var feedbacks []*models.Feedback
	err := r.db.
		Preload("Profile").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// AppendResponse appends an administrative response to the notes column
func (r *FeedbackRepo) AppendResponse(id int, response string) error {
	res := r.db.Model(&models.Feedback{}).
		Where("id = ?", id).
		Update("notes", gorm.Expr(
			"COALESCE(notes, '') || ?", "\n\n--- Admin response ---\n"+response,
		))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
