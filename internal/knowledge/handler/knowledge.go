// Package handler provides HTTP handlers for the knowledge service.
package handler

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/consult-x/internal/knowledge/biz"
	"github.com/kart-io/consult-x/internal/model"
	"github.com/kart-io/consult-x/pkg/errors"
	"github.com/kart-io/consult-x/pkg/response"
)

// KnowledgeHandler handles document ingestion and question answering.
type KnowledgeHandler struct {
	service        *biz.Service
	maxUploadBytes int64
}

// NewKnowledgeHandler creates a handler over the knowledge service.
func NewKnowledgeHandler(service *biz.Service, maxUploadBytes int64) *KnowledgeHandler {
	return &KnowledgeHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadDocument ingests one PDF posted as multipart form data with
// project_id, doc_type and file fields.
func (h *KnowledgeHandler) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	projectID := c.PostForm("project_id")
	if projectID == "" {
		response.WriteError(c, errors.ErrMissingParam.WithMessage("project_id is required"))
		return
	}

	docType, err := model.ParseDocType(c.PostForm("doc_type"))
	if err != nil {
		response.WriteError(c, errors.ErrDocType.WithCause(err))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			response.WriteError(c, errors.ErrRequestTooLarge.WithCause(err))
			return
		}
		response.WriteError(c, errors.ErrMissingParam.WithMessage("file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.WriteError(c, errors.ErrBadRequest.WithCause(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.WriteError(c, errors.ErrBadRequest.WithCause(err))
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), projectID, docType, fileHeader.Filename, data)
	if err != nil {
		response.WriteError(c, err)
		return
	}

	response.WriteSuccess(c, result)
}

// AskRequest is the question-answering request body.
type AskRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Query     string `json:"query" binding:"required"`
}

// Ask answers a question over the project's documents. The generated
// text streams back as plain text, citation markers included, flushed
// per delta.
func (h *KnowledgeHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, errors.ErrInvalidParam.WithCause(err))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.WriteError(c, errors.ErrInternal.WithMessage("streaming unsupported"))
		return
	}

	// Headers go out on the first delta, so retrieval and prompt errors
	// before that can still return a proper error envelope.
	started := false
	answer, err := h.service.Ask(c.Request.Context(), req.ProjectID, req.Query, func(delta string) error {
		if !started {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
			started = true
		}
		if _, err := c.Writer.WriteString(delta); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if started {
			// Mid-stream failure, the status line is gone. Log and cut
			// the connection.
			logger.Errorw("answer stream aborted",
				"project_id", req.ProjectID,
				"request_id", c.GetString("request_id"),
				"error", err,
			)
			c.Abort()
			return
		}
		response.WriteError(c, err)
		return
	}
	if !started {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(http.StatusOK)
	}

	logger.Infow("question answered",
		"project_id", req.ProjectID,
		"request_id", c.GetString("request_id"),
		"no_context", answer.NoContext,
		"citations", len(answer.Citations),
	)
}

// Stats reports the size of the knowledge base and service counters.
func (h *KnowledgeHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}

	response.WriteSuccess(c, stats)
}
