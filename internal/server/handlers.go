package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/edgard/tgrelay/internal/dispatch"
)

// SendMessageRequest is the body of POST /send_message.
// Message is a pointer so that an explicit empty string is accepted while an
// absent field is rejected.
type SendMessageRequest struct {
	Message   *string `json:"message"    binding:"required"`
	ParseMode string  `json:"parse_mode"`
	UserList  []int64 `json:"user_list"  binding:"required"`
}

// SendMessageResponse reports per-recipient delivery outcomes.
type SendMessageResponse struct {
	Successful []int64 `json:"successful"`
	Errors     []int64 `json:"errors"`
}

// ErrorResponse is returned for requests that could not be bound.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleSendMessage relays the message to every recipient. Once the body is
// bound it always answers 200; delivery failures are reported in Errors.
// Syntax errors answer 400, well-formed bodies of the wrong shape answer 422.
// Delivery is detached from the caller: a disconnect does not stop the sends.
func (s *Server) handleSendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status := http.StatusBadRequest
		var (
			validationErrs validator.ValidationErrors
			typeErr        *json.UnmarshalTypeError
		)
		if errors.As(err, &validationErrs) || errors.As(err, &typeErr) {
			status = http.StatusUnprocessableEntity
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	result := s.dispatcher.Dispatch(context.WithoutCancel(c.Request.Context()), dispatch.Request{
		Message:    *req.Message,
		FormatMode: req.ParseMode,
		Recipients: req.UserList,
	})

	c.JSON(http.StatusOK, SendMessageResponse{
		Successful: result.Successful,
		Errors:     result.Failed,
	})
}
