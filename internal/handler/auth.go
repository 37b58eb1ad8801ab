package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"carbon-tracker/internal/middleware"
	"carbon-tracker/internal/models"
	"carbon-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// NewAuthHandler converts ttlHours to a token lifetime (default 24h) and replaces an out-of-range bcryptCost with bcrypt.DefaultCost.
func NewAuthHandler(db *gorm.DB, jwtSecret, issuer string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		Issuer:     issuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- register ----------

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name, email and password are required")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	for _, err := range []error{
		util.ValidateName(req.Name),
		util.ValidateEmail(req.Email),
		util.ValidatePassword(req.Password),
	} {
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	db := h.DB.WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("count users by email")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check email")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "email already registered")
			return
		}
		log.Error().Err(err).Msg("create user")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	token, err := h.issueToken(c, user.ID)
	if err != nil {
		return
	}

	log.Info().Uint("user_id", user.ID).Msg("user registered")
	util.Created(c, util.Response{
		"token": token,
		"user":  userJSON(&user),
	})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email and password are required")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, please try again later")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// lock the account for a while after repeated failures
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
			log.Warn().Uint("user_id", user.ID).Time("locked_until", lockUntil).Msg("account locked")
		}
		if err := db.Model(&user).Select("failed_login_attempts", "locked_until").Updates(&user).Error; err != nil {
			log.Warn().Err(err).Uint("user_id", user.ID).Msg("record failed login")
		}
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := db.Model(&user).Select("failed_login_attempts", "locked_until", "last_login_at").Updates(&user).Error; err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("record successful login")
	}

	token, err := h.issueToken(c, user.ID)
	if err != nil {
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user":  userJSON(&user),
	})
}

// issueToken signs a token and mirrors it into the ct_token cookie. It writes the error
// response itself.
func (h *AuthHandler) issueToken(c *gin.Context, userID uint) (string, error) {
	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, userID, h.TokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to issue token")
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.TokenTTL.Seconds()), "/", "", false, true)
	return token, nil
}
