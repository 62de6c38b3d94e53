// Package handlers implements the REST endpoints of the relevance engine.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// errorResponse is the body returned for every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error onto its HTTP status and writes the
// structured error body. Internal errors are masked; the code still tells the
// client (and the logs) which category failed.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatus(code)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, errorResponse{Code: code.String(), Message: message})
}

// respondBadRequest reports a malformed request body or parameter.
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, apperrors.Wrap(err, apperrors.CodeInvalidParam, "invalid request"))
}
