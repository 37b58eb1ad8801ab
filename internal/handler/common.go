package handler

import (
	"errors"
	"net/http"

	"carbon-tracker/internal/middleware"
	"carbon-tracker/internal/models"
	"carbon-tracker/internal/store"
	"carbon-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// currentUser reads the user set by AuthMiddleware and answers 401 when it is missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return nil, false
	}
	return user, true
}

// writeError maps sentinel errors to the response envelope.
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, util.ErrValidation):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, store.ErrActivityNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "activity not found")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
	}
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"createdAt":   u.CreatedAt,
		"lastLoginAt": u.LastLoginAt,
	}
}
