package models

import "github.com/gin-gonic/gin"

// APIResponse - стандартный конверт ответа API: {success, data|error, details}.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// RespondOK отправляет успешный ответ с данными.
func RespondOK(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data})
}

// RespondError отправляет ответ об ошибке. details опциональны
// (например, список ошибок валидации).
func RespondError(c *gin.Context, statusCode int, message string, details ...interface{}) {
	resp := APIResponse{Success: false, Error: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.JSON(statusCode, resp)
}
