package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kunj2411/Lokmanya-ATS/internal/middleware"
	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/response"
)

// sessionFromContext returns the caller's session or writes 401 and reports false.
func sessionFromContext(c *gin.Context) (models.Session, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Session{}, false
	}
	return claims.Session(), true
}
