package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/services"
	"github.com/stackit/stackit/utils"
)

// CommentController manages comments on answers.
type CommentController struct {
	db       *gorm.DB
	votes    *services.VoteService
	notifier *services.Notifier
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{
		db:       db,
		votes:    services.NewVoteService(db),
		notifier: services.NewNotifier(db),
	}
}

// ListForAnswer returns an answer's comments, oldest first.
func (c *CommentController) ListForAnswer(ctx *gin.Context) {
	answerID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid answer id")
		return
	}

	var comments []models.Comment
	if err := c.db.Preload("User").
		Where("answer_id = ?", answerID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{"comments": comments})
}

// Create posts a comment on an answer and notifies the answer author and any
// mentioned users.
func (c *CommentController) Create(ctx *gin.Context) {
	answerID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid answer id")
		return
	}

	content, ok := c.bindContent(ctx)
	if !ok {
		return
	}

	userID, uok := getUserID(ctx)
	if !uok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}

	var answer models.Answer
	if err := c.db.First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40408, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load answer")
		return
	}

	comment := models.Comment{
		AnswerID:   answer.ID,
		QuestionID: answer.QuestionID,
		UserID:     userID,
		Content:    content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to create comment")
		return
	}
	c.db.Preload("User").First(&comment, comment.ID)

	commenterName := getUsername(ctx)
	go func(ans models.Answer, com models.Comment, name, text string) {
		defer func() { _ = recover() }()
		c.notifier.NotifyNewComment(ans.UserID, com.UserID, ans.QuestionID, ans.ID, name)
		c.notifier.NotifyMentions(text, com.UserID, ans.QuestionID, &ans.ID)
	}(answer, comment, commenterName, content)

	utils.InvalidateByPrefix("cache:question:detail:" + strconv.FormatUint(uint64(answer.QuestionID), 10))

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"comment": comment})
}

// Update lets the comment author edit the text, under the same length limit.
func (c *CommentController) Update(ctx *gin.Context) {
	content, ok := c.bindContent(ctx)
	if !ok {
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40409, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load comment")
		return
	}

	userID, uok := getUserID(ctx)
	if !uok {
		utils.Error(ctx, http.StatusUnauthorized, 40131, "unauthorized")
		return
	}
	if comment.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40306, "you can only update your own comments")
		return
	}

	changed := comment.Content != content
	comment.Content = content
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to update comment")
		return
	}

	if changed {
		go func(text string, senderID uint, com models.Comment) {
			defer func() { _ = recover() }()
			c.notifier.NotifyMentions(text, senderID, com.QuestionID, &com.AnswerID)
		}(content, userID, comment)
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// Delete removes a comment and its votes.
func (c *CommentController) Delete(ctx *gin.Context) {
	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40132, "unauthorized")
		return
	}
	if comment.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40307, "you can only delete your own comments")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_kind = ? AND target_id = ?", models.VoteTargetComment, comment.ID).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// Vote casts, switches, or re-casts the caller's vote on a comment.
func (c *CommentController) Vote(ctx *gin.Context) {
	commentID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid comment id")
		return
	}

	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "vote direction is required")
		return
	}
	dir, err := services.ParseDirection(req.Direction)
	if err != nil {
		respondDomainError(ctx, err, 50057, "failed to vote")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40133, "unauthorized")
		return
	}

	score, err := c.votes.Apply(models.VoteTargetComment, uint(commentID), userID, dir)
	if err != nil {
		respondDomainError(ctx, err, 50057, "failed to vote")
		return
	}

	utils.Success(ctx, gin.H{
		"votes":     score,
		"user_vote": string(c.votes.VoteFor(models.VoteTargetComment, uint(commentID), userID)),
	})
}

// bindContent reads and validates comment text from the request body. It
// writes the error response itself and reports success via the bool.
func (c *CommentController) bindContent(ctx *gin.Context) (string, bool) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "comment content is required")
		return "", false
	}
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40052, "comment content is required")
		return "", false
	}
	if utf8.RuneCountInString(content) > models.CommentMaxLength {
		respondDomainError(ctx, services.ErrCommentTooLong, 0, "")
		return "", false
	}
	return content, true
}
