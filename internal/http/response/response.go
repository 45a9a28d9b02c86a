package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackdechets/bsd-events/internal/platform/apierr"
)

type APIError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err with the status its code maps to. fields lists offending
// document paths, if any.
func RespondAPIError(c *gin.Context, err error, fields ...string) {
	api := apierr.FromError(err)
	c.JSON(api.Status, ErrorEnvelope{
		Error: APIError{
			Message: api.PublicMessage(),
			Code:    api.Code,
			Fields:  fields,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
