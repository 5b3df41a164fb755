package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/utils"
)

const notificationPageSize = 20

// NotificationController serves a user's notification feed. Every handler is
// scoped to the authenticated recipient.
type NotificationController struct {
	db *gorm.DB
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// List returns the caller's most recent notifications, newest first.
func (n *NotificationController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, "unauthorized")
		return
	}

	limit := notificationPageSize
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	var notifications []models.Notification
	if err := n.db.Preload("Sender").
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list notifications")
		return
	}

	utils.Success(ctx, gin.H{"notifications": notifications})
}

// UnreadCount returns the number of unread notifications for the caller.
func (n *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40141, "unauthorized")
		return
	}

	var count int64
	if err := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count notifications")
		return
	}

	utils.Success(ctx, gin.H{"count": count})
}

// MarkRead marks one of the caller's notifications as read.
func (n *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40142, "unauthorized")
		return
	}

	result := n.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", ctx.Param("id"), userID).
		Update("is_read", true)
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40411, "notification not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "notification marked as read"})
}

// MarkAllRead marks all of the caller's notifications as read.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40143, "unauthorized")
		return
	}

	if err := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to update notifications")
		return
	}

	utils.Success(ctx, gin.H{"message": "all notifications marked as read"})
}

// Delete removes one of the caller's notifications.
func (n *NotificationController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40144, "unauthorized")
		return
	}

	result := n.db.Where("id = ? AND recipient_id = ?", ctx.Param("id"), userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to delete notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40412, "notification not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "notification deleted"})
}
