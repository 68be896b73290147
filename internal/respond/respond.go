// Package respond writes the uniform response envelope. Transport status is
// always 200; outcome travels in the body so clients parse one shape for
// every call.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gateline/gateline/pkg/apierr"
)

// Envelope is the body of every reply, success or failure.
type Envelope struct {
	Requested string        `json:"requested"`
	Success   bool          `json:"success"`
	Error     *apierr.Error `json:"error"`
	Data      any           `json:"data"`
}

// Success writes a passing envelope carrying the handler's result.
func Success(c *gin.Context, requested string, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, Envelope{
		Requested: requested,
		Success:   true,
		Data:      data,
	})
}

// Failure writes a failing envelope with a null data field. Any
// non-framework error is folded into the generic server error first. In
// debug mode the body the client sent rides along under data.received so a
// misbehaving integration can see what the server actually parsed.
func Failure(c *gin.Context, requested string, err error, received any, debug bool) {
	var data any
	if debug && received != nil {
		data = gin.H{"received": received}
	}
	c.JSON(http.StatusOK, Envelope{
		Requested: requested,
		Success:   false,
		Error:     apierr.Normalize(err),
		Data:      data,
	})
}
