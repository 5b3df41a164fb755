package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
)

// AcceptService marks one answer per question as accepted.
type AcceptService struct {
	db *gorm.DB
}

// NewAcceptService creates an AcceptService.
func NewAcceptService(db *gorm.DB) *AcceptService {
	return &AcceptService{db: db}
}

// Accept marks the answer as the question's accepted solution. Only the
// question owner may accept. The clear-all-then-set-one sequence runs in one
// transaction so concurrent accepts still converge to at most one accepted
// answer per question.
func (s *AcceptService) Accept(answerID, requesterID uint) (*models.Answer, *models.Question, error) {
	var answer models.Answer
	var question models.Question

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.First(&question, answer.QuestionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if question.UserID != requesterID {
			return ErrForbidden
		}

		if err := tx.Model(&models.Answer{}).
			Where("question_id = ?", answer.QuestionID).
			Update("is_accepted", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&answer).Update("is_accepted", true).Error; err != nil {
			return err
		}
		answer.IsAccepted = true
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &answer, &question, nil
}
