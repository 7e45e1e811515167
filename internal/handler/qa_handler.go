package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chitdoc/docqa/internal/pkg/errcode"
	"github.com/chitdoc/docqa/internal/pkg/response"
	"github.com/chitdoc/docqa/internal/service"
)

type QAHandler struct {
	qa *service.QAService
}

func NewQAHandler(qa *service.QAService) *QAHandler {
	return &QAHandler{qa: qa}
}

type questionRequest struct {
	Question string `json:"question"`
}

type multiQuestionRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
}

func (h *QAHandler) Ask(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.qa.AnswerQuestion(c.Request.Context(), getUserID(c), c.Param("id"), req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *QAHandler) AskMulti(c *gin.Context) {
	var req multiQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.qa.AnswerQuestionMulti(c.Request.Context(), getUserID(c), req.DocumentIDs, req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
