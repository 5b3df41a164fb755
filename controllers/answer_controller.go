package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/services"
	"github.com/stackit/stackit/utils"
)

// AnswerController manages answers, their votes, and acceptance.
type AnswerController struct {
	db       *gorm.DB
	votes    *services.VoteService
	accepts  *services.AcceptService
	notifier *services.Notifier
}

// NewAnswerController creates an AnswerController.
func NewAnswerController(db *gorm.DB) *AnswerController {
	return &AnswerController{
		db:       db,
		votes:    services.NewVoteService(db),
		accepts:  services.NewAcceptService(db),
		notifier: services.NewNotifier(db),
	}
}

// ListForQuestion returns a question's answers sorted by score, then recency.
// When the request carries a valid bearer token, each answer also reports the
// caller's own vote.
func (a *AnswerController) ListForQuestion(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid question id")
		return
	}

	var answers []models.Answer
	if err := a.db.Preload("User").
		Where("question_id = ?", questionID).
		Order("votes DESC, created_at DESC").
		Find(&answers).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list answers")
		return
	}

	if userID, ok := bearerUserID(ctx); ok {
		a.votes.AttachUserVotes(answers, userID)
	}

	utils.Success(ctx, gin.H{"answers": answers})
}

// Create posts a new answer and notifies the question owner and any mentioned
// users.
func (a *AnswerController) Create(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid question id")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "answer content is required")
		return
	}
	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "answer content cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var question models.Question
	if err := a.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load question")
		return
	}

	answer := models.Answer{QuestionID: question.ID, UserID: userID, Content: content}
	if err := a.db.Create(&answer).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create answer")
		return
	}
	a.db.Preload("User").First(&answer, answer.ID)

	go func(q models.Question, ans models.Answer, text string) {
		defer func() { _ = recover() }()
		a.notifier.NotifyNewAnswer(q.UserID, ans.UserID, q.ID, ans.ID, q.Title)
		a.notifier.NotifyMentions(text, ans.UserID, q.ID, &ans.ID)
	}(question, answer, content)

	utils.InvalidateByPrefix("cache:question:detail:" + strconv.FormatUint(questionID, 10))

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"answer": answer})
}

// Update lets the answer author edit the content.
func (a *AnswerController) Update(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "answer content is required")
		return
	}
	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40045, "answer content cannot be empty")
		return
	}

	var answer models.Answer
	if err := a.db.First(&answer, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load answer")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}
	if answer.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40304, "you can only update your own answers")
		return
	}

	changed := answer.Content != content
	answer.Content = content
	if err := a.db.Save(&answer).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to update answer")
		return
	}

	if changed {
		go func(text string, senderID, questionID, answerID uint) {
			defer func() { _ = recover() }()
			a.notifier.NotifyMentions(text, senderID, questionID, &answerID)
		}(content, userID, answer.QuestionID, answer.ID)
	}

	utils.InvalidateByPrefix("cache:question:detail:" + strconv.FormatUint(uint64(answer.QuestionID), 10))

	utils.Success(ctx, gin.H{"answer": answer})
}

// Delete removes an answer together with its comments and all related votes.
func (a *AnswerController) Delete(ctx *gin.Context) {
	var answer models.Answer
	if err := a.db.First(&answer, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40407, "answer not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load answer")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}
	if answer.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40305, "you can only delete your own answers")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("answer_id = ?", answer.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.VoteTargetComment, commentIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.VoteTargetAnswer, answer.ID).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", answer.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&answer).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to delete answer")
		return
	}

	utils.InvalidateByPrefix("cache:question:detail:" + strconv.FormatUint(uint64(answer.QuestionID), 10))

	utils.Success(ctx, gin.H{"message": "answer deleted"})
}

// Vote casts, switches, or re-casts the caller's vote on an answer.
func (a *AnswerController) Vote(ctx *gin.Context) {
	answerID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40046, "invalid answer id")
		return
	}

	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40047, "vote direction is required")
		return
	}
	dir, err := services.ParseDirection(req.Direction)
	if err != nil {
		respondDomainError(ctx, err, 50047, "failed to vote")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40123, "unauthorized")
		return
	}

	score, err := a.votes.Apply(models.VoteTargetAnswer, uint(answerID), userID, dir)
	if err != nil {
		respondDomainError(ctx, err, 50047, "failed to vote")
		return
	}

	a.invalidateDetailFor(uint(answerID))

	utils.Success(ctx, gin.H{
		"votes":     score,
		"user_vote": string(a.votes.VoteFor(models.VoteTargetAnswer, uint(answerID), userID)),
	})
}

// Accept marks an answer as the question's accepted solution and notifies its
// author.
func (a *AnswerController) Accept(ctx *gin.Context) {
	answerID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40048, "invalid answer id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40124, "unauthorized")
		return
	}

	answer, question, err := a.accepts.Accept(uint(answerID), userID)
	if err != nil {
		respondDomainError(ctx, err, 50048, "failed to accept answer")
		return
	}

	go func(ans models.Answer, q models.Question, acceptorID uint) {
		defer func() { _ = recover() }()
		a.notifier.NotifyAnswerAccepted(ans.UserID, acceptorID, q.ID, ans.ID, q.Title)
	}(*answer, *question, userID)

	utils.InvalidateByPrefix("cache:question:detail:" + strconv.FormatUint(uint64(question.ID), 10))

	utils.Success(ctx, gin.H{"answer": answer})
}

func (a *AnswerController) invalidateDetailFor(answerID uint) {
	var row struct{ QuestionID uint }
	if err := a.db.Model(&models.Answer{}).Select("question_id").
		Where("id = ?", answerID).First(&row).Error; err != nil {
		return
	}
	utils.InvalidateByPrefix("cache:question:detail:" + strconv.FormatUint(uint64(row.QuestionID), 10))
}

// bearerUserID resolves the optional Authorization header on public endpoints.
// Invalid or missing tokens are treated as anonymous access.
func bearerUserID(ctx *gin.Context) (uint, bool) {
	if userID, ok := getUserID(ctx); ok {
		return userID, true
	}
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if utils.IsTokenBlacklisted(token) {
		return 0, false
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
