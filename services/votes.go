package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/utils"
)

// Direction is the unified vote direction shared by answers and comments.
type Direction string

const (
	Upvote   Direction = "up"
	Downvote Direction = "down"
)

// ParseDirection validates a client-supplied vote direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Upvote, Downvote:
		return Direction(s), nil
	default:
		return "", ErrInvalidDirection
	}
}

func (d Direction) value() int {
	if d == Downvote {
		return -1
	}
	return 1
}

// VoteService applies votes to answers and comments. Each application runs in
// one transaction: the voter's row is replaced, the score is recomputed from
// the rows, and the entity's votes column is rewritten. The score therefore
// always equals count(upvotes) - count(downvotes).
type VoteService struct {
	db *gorm.DB
}

// NewVoteService creates a VoteService.
func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// Apply casts, switches, or re-casts a vote and returns the resulting score.
// Re-casting the same direction is a no-op; switching direction nets a change
// of two. Voting on one's own content fails with ErrSelfVote.
func (s *VoteService) Apply(kind string, targetID, voterID uint, dir Direction) (int, error) {
	if dir != Upvote && dir != Downvote {
		return 0, ErrInvalidDirection
	}
	value := dir.value()

	var score int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ownerID, err := targetOwner(tx, kind, targetID)
		if err != nil {
			return err
		}
		if ownerID == voterID {
			return ErrSelfVote
		}

		var existing models.Vote
		err = tx.Where("user_id = ? AND target_kind = ? AND target_id = ?", voterID, kind, targetID).
			First(&existing).Error
		switch {
		case err == nil && existing.Value == value:
			// same direction again: keep the row, just report current state
		case err == nil:
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: voterID, TargetKind: kind, TargetID: targetID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		default:
			return err
		}

		score, err = scoreOf(tx, kind, targetID)
		if err != nil {
			return err
		}
		return writeScore(tx, kind, targetID, score)
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// VoteFor returns the direction the user currently holds on the target, or
// empty when they have not voted.
func (s *VoteService) VoteFor(kind string, targetID, userID uint) Direction {
	var vote models.Vote
	err := s.db.Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		First(&vote).Error
	if err != nil {
		return ""
	}
	if vote.Value < 0 {
		return Downvote
	}
	return Upvote
}

// AttachUserVotes fills the transient UserVote field on each answer with the
// given user's current vote, for client display.
func (s *VoteService) AttachUserVotes(answers []models.Answer, userID uint) {
	if len(answers) == 0 {
		return
	}
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.ID)
	}
	ids = utils.UniqueUint(ids)
	var votes []models.Vote
	if err := s.db.Where("user_id = ? AND target_kind = ? AND target_id IN ?",
		userID, models.VoteTargetAnswer, ids).Find(&votes).Error; err != nil {
		return
	}
	byTarget := make(map[uint]int, len(votes))
	for _, v := range votes {
		byTarget[v.TargetID] = v.Value
	}
	for i := range answers {
		switch byTarget[answers[i].ID] {
		case 1:
			answers[i].UserVote = string(Upvote)
		case -1:
			answers[i].UserVote = string(Downvote)
		}
	}
}

func targetOwner(tx *gorm.DB, kind string, targetID uint) (uint, error) {
	var row struct{ UserID uint }
	var err error
	switch kind {
	case models.VoteTargetAnswer:
		err = tx.Model(&models.Answer{}).Select("user_id").Where("id = ?", targetID).First(&row).Error
	case models.VoteTargetComment:
		err = tx.Model(&models.Comment{}).Select("user_id").Where("id = ?", targetID).First(&row).Error
	default:
		return 0, ErrNotFound
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return row.UserID, nil
}

func scoreOf(tx *gorm.DB, kind string, targetID uint) (int, error) {
	var score int
	err := tx.Model(&models.Vote{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Select("COALESCE(SUM(value),0)").Scan(&score).Error
	if err != nil {
		return 0, err
	}
	return score, nil
}

func writeScore(tx *gorm.DB, kind string, targetID uint, score int) error {
	switch kind {
	case models.VoteTargetAnswer:
		return tx.Model(&models.Answer{}).Where("id = ?", targetID).
			UpdateColumn("votes", score).Error
	case models.VoteTargetComment:
		return tx.Model(&models.Comment{}).Where("id = ?", targetID).
			UpdateColumn("votes", score).Error
	}
	return ErrNotFound
}
