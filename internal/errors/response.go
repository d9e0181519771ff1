package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Error   string   `json:"error"`   // 에러 코드 (프론트엔드에서 매핑용)
	Message string   `json:"message"` // 사용자에게 보여질 메시지
	Fields  []string `json:"fields,omitempty"`
	Effects any      `json:"effects,omitempty"` // 함께 발생한 UI 효과 (toast 등)
}

// RespondWithError 에러 응답 헬퍼
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Session requise"
	}
	RespondWithError(c, http.StatusUnauthorized, SessionUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Erreur serveur, réessayez plus tard"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithParsedError maps err through ParseError. effects are attached
// to the body when the failed command still produced UI effects.
func RespondWithParsedError(c *gin.Context, err error, context string, effects any) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
		Fields:  info.Fields,
		Effects: effects,
	})
}
