// Package router provides knowledge service routing.
package router

import (
	"github.com/kart-io/logger"

	"github.com/kart-io/consult-x/internal/knowledge/handler"
	"github.com/kart-io/consult-x/pkg/server"
)

// Register registers the knowledge service routes.
func Register(srv *server.Server, h *handler.KnowledgeHandler) {
	v1 := srv.Engine().Group("/v1")
	{
		knowledge := v1.Group("/knowledge")
		{
			knowledge.POST("/documents", h.UploadDocument)
			knowledge.POST("/ask", h.Ask)
			knowledge.GET("/stats", h.Stats)
		}
	}

	logger.Info("HTTP routes registered")
}
