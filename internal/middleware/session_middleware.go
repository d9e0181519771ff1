package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/vitrine-backend/internal/errors"
	"github.com/ikkim/vitrine-backend/pkg/util"
)

const SessionIDKey = "session_id"

type SessionMiddleware struct {
	secret string
}

func NewSessionMiddleware(secret string) *SessionMiddleware {
	return &SessionMiddleware{secret: secret}
}

// Authenticate requires a session token, read from the Authorization
// header or, for WebSocket upgrades, from the token query parameter.
func (m *SessionMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.SessionTokenInvalid, "Format d'authentification invalide")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
			if token == "" {
				apperrors.Unauthorized(c, "")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateToken(token, m.secret)
		if err != nil {
			log.Warn("Session token rejected", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if errors.Is(err, util.ErrExpiredToken) {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.SessionTokenExpired, "Session expirée")
			} else {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.SessionTokenInvalid, "Jeton de session invalide")
			}
			c.Abort()
			return
		}

		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

// GetSessionID extracts the session ID set by Authenticate
func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
