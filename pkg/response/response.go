// Package response provides unified API response structures.
// This package defines standard response formats for HTTP APIs,
// ensuring consistent response structures across all endpoints.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/consult-x/pkg/errors"
)

// Response is the unified API response structure.
// All JSON API responses use this format for consistency.
type Response struct {
	// Code is the business error code (0 = success)
	Code int `json:"code"`

	// Message is a human-readable message
	Message string `json:"message"`

	// Data contains the response payload (nil for errors)
	Data interface{} `json:"data,omitempty"`

	// RequestID is the unique request identifier for tracing
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is the response timestamp (Unix milliseconds)
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Success creates a successful response with data.
func Success(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// Err creates an error response from an Errno.
func Err(e *errors.Errno) *Response {
	if e == nil {
		return Success(nil)
	}
	return &Response{
		Code:    e.Code,
		Message: e.MessageEN,
	}
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Code == 0
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(c *gin.Context, data interface{}) {
	resp := Success(data)
	resp.Timestamp = time.Now().UnixMilli()
	if requestID := c.GetString("request_id"); requestID != "" {
		resp.RequestID = requestID
	}
	c.JSON(http.StatusOK, resp)
}

// WriteError converts an error to an Errno and writes the JSON error
// response with the mapped HTTP status.
func WriteError(c *gin.Context, err error) {
	e := errors.FromError(err)
	resp := Err(e)
	resp.Timestamp = time.Now().UnixMilli()
	if requestID := c.GetString("request_id"); requestID != "" {
		resp.RequestID = requestID
	}
	c.JSON(e.HTTPStatus(), resp)
}
