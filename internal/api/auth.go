package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"strings"  // Form value trimming

	"trading_sim/internal/config" // Application configuration
	"trading_sim/internal/domain" // Domain models
	"trading_sim/internal/ledger" // Ledger error taxonomy
	"trading_sim/internal/utils"  // Session token helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// setSession signs a session token for the user and stores it in an
// HTTP-only cookie.
func setSession(c *gin.Context, userID uint, cfg *config.Config) error {
	token, err := utils.GenerateSessionToken(userID, cfg.SessionSecret)
	if err != nil {
		return err
	}
	c.SetCookie(utils.SessionCookie, token, int(utils.SessionTTL.Seconds()), "/", "", cfg.IsProd, true)
	return nil
}

// RegisterPageHandler serves the registration form
func RegisterPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "register.html", nil)
	}
}

// RegisterHandler creates a new user with a hashed password, seeds the
// starting cash balance, and establishes a session.
func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")
		confirmation := c.PostForm("confirmation")

		if username == "" {
			apology(c, http.StatusBadRequest, "must provide username")
			return
		}
		if password == "" {
			apology(c, http.StatusBadRequest, "must provide password")
			return
		}
		if password != confirmation {
			apology(c, http.StatusBadRequest, "passwords do not match")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			apology(c, http.StatusInternalServerError, "failed to process password")
			return
		}

		// Uniqueness is enforced by the username constraint rather than a
		// pre-check, so two racing registrations cannot both succeed.
		user := domain.User{Username: username, Hash: string(hash), Cash: cfg.StartingCash}
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				apology(c, http.StatusBadRequest, ledger.ErrDuplicateUsername.Error())
				return
			}
			serverError(c, err)
			return
		}

		if err := setSession(c, user.ID, cfg); err != nil {
			apology(c, http.StatusInternalServerError, "failed to create session")
			return
		}

		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
		}).Info("User registered")
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// LoginPageHandler serves the login form
func LoginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", nil)
	}
}

// LoginHandler authenticates a user and establishes a session. Unknown
// usernames and wrong passwords share one generic message.
func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		if username == "" {
			apology(c, http.StatusBadRequest, "must provide username")
			return
		}
		if password == "" {
			apology(c, http.StatusBadRequest, "must provide password")
			return
		}

		var user domain.User
		if err := db.WithContext(c.Request.Context()).
			Where("username = ?", username).First(&user).Error; err != nil {
			apology(c, http.StatusBadRequest, "invalid username and/or password")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
			apology(c, http.StatusBadRequest, "invalid username and/or password")
			return
		}

		if err := setSession(c, user.ID, cfg); err != nil {
			apology(c, http.StatusInternalServerError, "failed to create session")
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// LogoutHandler clears the session unconditionally
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(utils.SessionCookie, "", -1, "/", "", false, true)
		c.Redirect(http.StatusSeeOther, "/login")
	}
}
