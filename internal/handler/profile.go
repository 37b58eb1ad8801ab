package handler

import (
	"errors"
	"net/http"
	"strings"

	"carbon-tracker/internal/models"
	"carbon-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type updateProfileReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// GetProfile returns the logged-in user.
func GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"user": userJSON(user)})
}

// UpdateProfile changes name and/or email. Empty fields are left untouched.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}

		updates := map[string]interface{}{}
		if name := strings.TrimSpace(req.Name); name != "" {
			if err := util.ValidateName(name); err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
				return
			}
			updates["name"] = name
		}
		if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
			if err := util.ValidateEmail(email); err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
				return
			}
			var count int64
			if err := db.WithContext(c.Request.Context()).Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count).Error; err != nil {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check email")
				return
			}
			if count > 0 {
				util.Error(c, http.StatusConflict, util.CodeConflict, "email already registered")
				return
			}
			updates["email"] = email
		}

		if len(updates) > 0 {
			if err := db.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					util.Error(c, http.StatusConflict, util.CodeConflict, "email already registered")
					return
				}
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
				return
			}
			if name, ok := updates["name"].(string); ok {
				user.Name = name
			}
			if email, ok := updates["email"].(string); ok {
				user.Email = email
			}
		}

		util.Success(c, util.Response{"user": userJSON(user)})
	}
}

// ChangePassword verifies the old password and stores a hash of the new one.
func ChangePassword(db *gorm.DB, bcryptCost int) gin.HandlerFunc {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req changePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "oldPassword and newPassword are required")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "old password is incorrect")
			return
		}
		if err := util.ValidatePassword(req.NewPassword); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}

		if err := db.WithContext(c.Request.Context()).Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		util.Success(c, util.Response{
			"message": "password changed, please log in again with the new password",
		})
	}
}
