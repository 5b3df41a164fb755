package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/utils"
)

// StatsController exposes aggregate site counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a StatsController.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// SiteStats returns global counts for the landing page sidebar.
func (s *StatsController) SiteStats(ctx *gin.Context) {
	const cacheKey = "cache:stats:site"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var users, questions, answers, comments int64
	s.db.Model(&models.User{}).Count(&users)
	s.db.Model(&models.Question{}).Count(&questions)
	s.db.Model(&models.Answer{}).Count(&answers)
	s.db.Model(&models.Comment{}).Count(&comments)

	var views int64
	s.db.Model(&models.Question{}).Select("COALESCE(SUM(views),0)").Scan(&views)

	payload := gin.H{
		"users":     users,
		"questions": questions,
		"answers":   answers,
		"comments":  comments,
		"views":     views,
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// UserStats returns a user's contribution counters for their public profile.
func (s *StatsController) UserStats(ctx *gin.Context) {
	userID := ctx.Param("id")

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40413, "user not found")
		return
	}

	var questions, answers, accepted int64
	s.db.Model(&models.Question{}).Where("user_id = ?", user.ID).Count(&questions)
	s.db.Model(&models.Answer{}).Where("user_id = ?", user.ID).Count(&answers)
	s.db.Model(&models.Answer{}).Where("user_id = ? AND is_accepted = ?", user.ID, true).Count(&accepted)

	utils.Success(ctx, gin.H{
		"questions":        questions,
		"answers":          answers,
		"accepted_answers": accepted,
		"reputation":       user.Reputation,
	})
}
