package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stackit/stackit/middleware"
	"github.com/stackit/stackit/services"
	"github.com/stackit/stackit/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	name, _ := value.(string)
	return name
}

// respondDomainError translates a services error into the uniform JSON
// envelope. Unknown errors fall back to the given 5xx code and message.
func respondDomainError(ctx *gin.Context, err error, serverCode int, serverMsg string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40404, "not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40303, "not authorized for this action")
	case errors.Is(err, services.ErrSelfVote):
		utils.Error(ctx, http.StatusBadRequest, 40015, "cannot vote on your own content")
	case errors.Is(err, services.ErrInvalidDirection):
		utils.Error(ctx, http.StatusBadRequest, 40016, "vote direction must be 'up' or 'down'")
	case errors.Is(err, services.ErrCommentTooLong):
		utils.Error(ctx, http.StatusBadRequest, 40017, "comment cannot exceed 500 characters")
	default:
		utils.Error(ctx, http.StatusInternalServerError, serverCode, serverMsg)
	}
}
