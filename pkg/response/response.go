package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

// Envelope represents the common response contract. Every body carries
// success at the top level.
type Envelope struct {
	Success        bool                   `json:"success"`
	Data           interface{}            `json:"data,omitempty"`
	Message        string                 `json:"message,omitempty"`
	Error          string                 `json:"error,omitempty"`
	Code           string                 `json:"code,omitempty"`
	RequiredFields []string               `json:"requiredFields,omitempty"`
	Degraded       bool                   `json:"degraded,omitempty"`
	Meta           map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Success: true, Data: data}
	if len(meta) > 0 && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Outcome sends a 200 whose success flag reflects a domain decision rather
// than a transport failure, e.g. a rejected password.
func Outcome(c *gin.Context, success bool, message string) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Success: success, Message: message})
}

// Error sends an error response converting the error to the common structure.
// Internal causes never reach the body.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	c.JSON(appErr.Status, Envelope{
		Success:        false,
		Error:          appErr.Message,
		Code:           appErr.Code,
		RequiredFields: appErr.Fields,
	})
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
