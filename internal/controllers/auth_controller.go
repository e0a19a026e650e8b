package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"route_tracker/internal/middleware"
)

// tokenSubject is the only user of a locked instance.
const tokenSubject = "owner"

// AuthController exchanges the access password for a token.
type AuthController struct {
	passwordHash []byte
	secret       []byte
}

func NewAuthController(passwordHash string, secret []byte) *AuthController {
	return &AuthController{passwordHash: []byte(passwordHash), secret: secret}
}

func (ac *AuthController) Login(c *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(ac.passwordHash) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "authentication is disabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(ac.passwordHash, []byte(body.Password)); err != nil {
		logrus.WithField("client_ip", c.ClientIP()).Warn("Login: incorrect password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, err := middleware.GenerateToken(ac.secret, tokenSubject)
	if err != nil {
		logrus.WithError(err).Error("Login: could not generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
