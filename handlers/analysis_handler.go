package handlers

import (
	"errors"
	"net/http"

	"lexintent-backend/service"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles HTTP requests for intent analysis and direct queries
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// AnalyzeIntentRequest represents the request body for intent analysis
type AnalyzeIntentRequest struct {
	LawText    string `json:"law_text" binding:"required"`
	LawContext string `json:"law_context"`
}

// AnalyzeIntent handles POST /api/analyze-intent
func (h *AnalysisHandler) AnalyzeIntent(c *gin.Context) {
	var req AnalyzeIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	serviceReq := service.AnalyzeIntentRequest{
		LawText:    req.LawText,
		LawContext: req.LawContext,
	}

	result, err := h.analysisService.AnalyzeIntent(c.Request.Context(), serviceReq)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// StartAnalysis handles POST /api/laws/:id/analyze
func (h *AnalysisHandler) StartAnalysis(c *gin.Context) {
	id := c.Param("id")

	generation, err := h.analysisService.StartAnalysis(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLawNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Law not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// The pipeline runs in the background; poll /api/analysis for the result
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"generation": generation,
			"status":     "running",
		},
	})
}

// GetSession handles GET /api/analysis
func (h *AnalysisHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.analysisService.Session(),
	})
}

// DirectQueryRequest represents the request body for a direct query
type DirectQueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// DirectQuery handles POST /api/query
func (h *AnalysisHandler) DirectQuery(c *gin.Context) {
	var req DirectQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	h.directQuery(c, req.Question)
}

// DirectQueryGet handles GET /api/query
func (h *AnalysisHandler) DirectQueryGet(c *gin.Context) {
	question := c.Query("q")
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_QUERY",
				"message": "Query parameter q is required",
			},
		})
		return
	}

	h.directQuery(c, question)
}

func (h *AnalysisHandler) directQuery(c *gin.Context, question string) {
	result, err := h.analysisService.DirectQuery(c.Request.Context(), service.DirectQueryRequest{
		Question: question,
	})
	if err != nil {
		if errors.Is(err, service.ErrGenerationFailed) {
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATION_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUERY_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// analysisError maps pipeline failures onto status codes. Empty grounding is
// the caller's problem (the corpus has nothing relevant); malformed or failed
// generation is the upstream model's.
func (h *AnalysisHandler) analysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyGrounding):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_GROUNDING",
				"message": "No debates found to ground the analysis",
			},
		})
	case errors.Is(err, service.ErrMalformedResponse):
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MALFORMED_RESPONSE",
				"message": err.Error(),
			},
		})
	case errors.Is(err, service.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATION_FAILED",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
	}
}
