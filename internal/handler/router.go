package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chitdoc/docqa/internal/middleware"
)

type RouterDeps struct {
	Auth        *AuthHandler
	Documents   *DocumentHandler
	QA          *QAHandler
	JWTSecret   []byte
	AIRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/documents", deps.Documents.Upload)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/search", deps.Documents.Search)
	authGroup.POST("/documents/:id/extract", deps.Documents.Extract)
	authGroup.GET("/documents/:id/text", deps.Documents.GetText)
	authGroup.POST("/documents/:id/embeddings", deps.Documents.CreateEmbeddings)
	authGroup.GET("/documents/:id/chunks", deps.Documents.ListChunks)
	authGroup.GET("/documents/:id/summary", deps.Documents.GetSummary)

	aiGroup := authGroup.Group("")
	aiGroup.Use(middleware.RateLimit(deps.AIRateLimit))
	aiGroup.POST("/documents/:id/qa", deps.QA.Ask)
	aiGroup.POST("/documents/qa", deps.QA.AskMulti)
	aiGroup.POST("/documents/:id/summarize", deps.Documents.Summarize)
}
