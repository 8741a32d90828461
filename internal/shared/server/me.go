package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the identity carried by the bearer token.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	user := gin.H{"id": userID}
	if email := middleware.UserEmailFromContext(c); email != "" {
		user["email"] = email
	}
	if name := middleware.UserNameFromContext(c); name != "" {
		user["name"] = name
	}
	if picture := middleware.UserPictureFromContext(c); picture != "" {
		user["picture"] = picture
	}
	respond.OK(c, gin.H{"success": true, "user": user})
}
