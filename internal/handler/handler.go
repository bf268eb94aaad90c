package handler

import (
	"strconv"

	"github.com/ASMFahim71/ledgerly/internal/apperr"
	"github.com/ASMFahim71/ledgerly/internal/middleware"
	"github.com/ASMFahim71/ledgerly/internal/models"
	"github.com/ASMFahim71/ledgerly/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user from the context, writing a 401
// and returning false when it is missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Fail(c, apperr.Unauthenticated("You are not logged in! Please log in to get access."))
		return nil, false
	}
	return user, true
}

// paramID parses a numeric path parameter. A malformed id cannot name an
// existing row, so it answers 404 like any other missing resource.
func paramID(c *gin.Context, name, resource string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		util.Fail(c, apperr.NotFound(resource+" not found!"))
		return 0, false
	}
	return uint(id), true
}
