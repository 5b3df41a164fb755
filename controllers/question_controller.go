package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stackit/stackit/config"
	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/services"
	"github.com/stackit/stackit/utils"
)

const maxTagsPerQuestion = 5

// QuestionController manages question CRUD and attachment uploads.
type QuestionController struct {
	db       *gorm.DB
	notifier *services.Notifier
}

// NewQuestionController creates a QuestionController.
func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{db: db, notifier: services.NewNotifier(db)}
}

// ListQuestions returns paginated questions with author info, newest first.
// Supports free-text search and filtering by a single tag.
func (q *QuestionController) ListQuestions(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	tag := strings.TrimSpace(ctx.Query("tag"))

	// Cache only untargeted listings to avoid cache key explosion
	cacheKey := fmt.Sprintf("cache:questions:list:tag=%s:page=%d:size=%d", tag, page, pageSize)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var questions []models.Question
	var total int64

	query := q.db.Preload("User").Order("created_at DESC")
	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if tag != "" {
		query = query.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
	}
	if err := query.Model(&models.Question{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count questions")
		return
	}
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&questions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list questions")
		return
	}

	payload := gin.H{
		"items": questions,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetQuestion returns a single question with its answers and bumps the view
// counter.
func (q *QuestionController) GetQuestion(ctx *gin.Context) {
	questionID := ctx.Param("id")

	// Count the view before any cache short-circuit; the cached payload may
	// carry a slightly stale counter.
	q.db.Model(&models.Question{}).Where("id = ?", questionID).
		UpdateColumn("views", gorm.Expr("views + 1"))

	if b, ok := utils.CacheGetBytes("cache:question:detail:" + questionID); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var question models.Question
	err := q.db.Preload("User").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("votes DESC, created_at DESC")
		}).
		Preload("Answers.User").
		First(&question, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load question")
		return
	}

	payload := gin.H{"question": question}
	utils.CacheSetJSON("cache:question:detail:"+questionID, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// CreateQuestion posts a new question and scans the description for mentions.
func (q *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required,min=1"`
		Description string   `json:"description" binding:"required"`
		Tags        []string `json:"tags"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	description := utils.Sanitize(req.Description)

	tags, err := normalizeTags(req.Tags)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, err.Error())
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	question := models.Question{
		UserID:      userID,
		Title:       title,
		Description: description,
		Tags:        datatypes.NewJSONSlice(tags),
	}

	if err := q.db.Create(&question).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create question")
		return
	}

	// Mentions are best-effort and never block the primary operation.
	go func(text string, senderID, questionID uint) {
		defer func() { _ = recover() }()
		q.notifier.NotifyMentions(text, senderID, questionID, nil)
	}(description, userID, question.ID)

	utils.InvalidateByPrefix("cache:questions:list:")

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"question": question})
}

// UpdateQuestion lets the owner edit title, description, and tags.
func (q *QuestionController) UpdateQuestion(ctx *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required,min=1"`
		Description string   `json:"description" binding:"required"`
		Tags        []string `json:"tags"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
		return
	}
	description := utils.Sanitize(req.Description)

	tags, err := normalizeTags(req.Tags)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, err.Error())
		return
	}

	questionID := ctx.Param("id")
	var question models.Question
	if err := q.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load question")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}
	if question.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own questions")
		return
	}

	descriptionChanged := question.Description != description
	question.Title = title
	question.Description = description
	question.Tags = datatypes.NewJSONSlice(tags)
	if err := q.db.Save(&question).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update question")
		return
	}

	if descriptionChanged {
		go func(text string, senderID, qid uint) {
			defer func() { _ = recover() }()
			q.notifier.NotifyMentions(text, senderID, qid, nil)
		}(description, userID, question.ID)
	}

	utils.InvalidateByPrefix("cache:questions:list:")
	utils.InvalidateByPrefix("cache:question:detail:" + questionID)

	utils.Success(ctx, gin.H{"question": question})
}

// DeleteQuestion removes a question together with its answers, comments, and
// votes so no orphaned records remain.
func (q *QuestionController) DeleteQuestion(ctx *gin.Context) {
	questionID := ctx.Param("id")
	var question models.Question
	if err := q.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "question not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load question")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	if question.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own questions")
		return
	}

	err := q.db.Transaction(func(tx *gorm.DB) error {
		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", question.ID).
			Pluck("id", &answerIDs).Error; err != nil {
			return err
		}
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("question_id = ?", question.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.VoteTargetAnswer, answerIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_kind = ? AND target_id IN ?", models.VoteTargetComment, commentIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete question")
		return
	}

	utils.InvalidateByPrefix("cache:questions:list:")
	utils.InvalidateByPrefix("cache:question:detail:" + questionID)

	utils.Success(ctx, gin.H{"message": "question deleted"})
}

// UploadAttachment stores a file embedded from the rich-text editor and
// schedules its cleanup.
func (q *QuestionController) UploadAttachment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create upload directory")
		return
	}

	fname := filepath.Base(header.Filename)
	if fname == "." || fname == "" {
		fname = fmt.Sprintf("file_%d", now.UnixNano())
	}
	safeName := fmt.Sprintf("%d_%d_%s", now.UnixNano(), userID, fname)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to write file")
		} else {
			utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		}
		return
	}

	relURL := strings.Join([]string{"/static/uploads", now.Format("2006"), now.Format("01"), now.Format("02"), safeName}, "/")
	conf := config.Get()
	ttlMinutes := conf.UploadsSelfDestructMinutes
	expireAt := now.Add(time.Duration(ttlMinutes) * time.Minute)
	absPath, _ := filepath.Abs(dstPath)
	record := models.UploadedFile{UserID: userID, FilePath: absPath, URL: relURL, ExpireAt: expireAt}
	if err := q.db.Create(&record).Error; err != nil {
		utils.Sugar.Warnf("failed to record uploaded file %s: %v", relURL, err)
	}

	utils.Success(ctx, gin.H{"url": relURL})
}

func normalizeTags(tags []string) ([]string, error) {
	if len(tags) > maxTagsPerQuestion {
		return nil, fmt.Errorf("at most %d tags allowed", maxTagsPerQuestion)
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		if len(t) > 35 {
			return nil, fmt.Errorf("tag %q is too long", t)
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}
