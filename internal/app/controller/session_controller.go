package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/vitrine-backend/internal/app/service"
	apperrors "github.com/ikkim/vitrine-backend/internal/errors"
	"github.com/ikkim/vitrine-backend/internal/middleware"
)

type SessionController struct {
	storefrontService service.StorefrontService
}

func NewSessionController(storefrontService service.StorefrontService) *SessionController {
	return &SessionController{storefrontService: storefrontService}
}

// CreateSession opens an empty storefront session and returns its token
// POST /api/v1/sessions
func (ctrl *SessionController) CreateSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	info, err := ctrl.storefrontService.CreateSession(c.Request.Context())
	if err != nil {
		log.Error("Failed to create session", err)
		apperrors.RespondWithParsedError(c, err, "session", nil)
		return
	}

	c.JSON(http.StatusCreated, info)
}

// DeleteSession drops the caller's session
// DELETE /api/v1/sessions
func (ctrl *SessionController) DeleteSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, _ := middleware.GetSessionID(c)

	if err := ctrl.storefrontService.DeleteSession(c.Request.Context(), sessionID); err != nil {
		log.Error("Failed to delete session", err)
		apperrors.RespondWithParsedError(c, err, "session", nil)
		return
	}

	log.Info("Session deleted")
	c.Status(http.StatusNoContent)
}
