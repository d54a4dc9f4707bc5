package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/timetable-api/internal/middleware"
	"github.com/campushq/timetable-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// termFromQuery reads the year/semester pair every term-scoped endpoint takes.
func termFromQuery(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year == 0 {
		return 0, 0, false
	}
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester < 1 || semester > 2 {
		return 0, 0, false
	}
	return year, semester, true
}
