package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notewire/notewire/errors"
)

// RespondWithError inspects err: if it is an *errors.AppError the status
// and structured body are derived automatically; otherwise a generic 500
// is sent.
func RespondWithError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
}
