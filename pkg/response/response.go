package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
)

// CodeKey is the gin context key holding the result code of the written envelope.
const CodeKey = "response_code"

// Envelope represents the common response contract.
type Envelope struct {
	Code appErrors.RespCode `json:"code"`
	Msg  string             `json:"msg"`
	Data interface{}        `json:"data,omitempty"`
}

// JSON sends a success envelope with optional data.
func JSON(c *gin.Context, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.Set(CodeKey, appErrors.CodeSuccess)
	c.JSON(http.StatusOK, Envelope{
		Code: appErrors.CodeSuccess,
		Msg:  appErrors.CodeSuccess.Message(),
		Data: data,
	})
}

// OK sends a success envelope without data.
func OK(c *gin.Context) {
	JSON(c, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.Set(CodeKey, appErr.Code)
	c.JSON(appErr.Status, Envelope{Code: appErr.Code, Msg: appErr.Message})
}

// Code returns the result code written for the current request, if any.
func Code(c *gin.Context) (appErrors.RespCode, bool) {
	v, ok := c.Get(CodeKey)
	if !ok {
		return 0, false
	}
	code, ok := v.(appErrors.RespCode)
	return code, ok
}

// Attachment streams a generated file to the client.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Cache-Control", "no-store")
	c.Set(CodeKey, appErrors.CodeSuccess)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
