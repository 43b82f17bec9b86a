package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lexintent-backend/service"

	"github.com/gin-gonic/gin"
)

// LawHandler handles HTTP requests for law listing and search
type LawHandler struct {
	lawService       *service.LawService
	searchController *service.SearchController
}

// NewLawHandler creates a new law handler
func NewLawHandler(lawService *service.LawService, searchController *service.SearchController) *LawHandler {
	return &LawHandler{
		lawService:       lawService,
		searchController: searchController,
	}
}

// GetStats handles GET /api/stats
func (h *LawHandler) GetStats(c *gin.Context) {
	result, err := h.lawService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
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

// ListLaws handles GET /api/laws
func (h *LawHandler) ListLaws(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be an integer",
				},
			})
			return
		}
		limit = parsed
	}

	result, err := h.lawService.ListLaws(c.Request.Context(), service.ListLawsRequest{Limit: limit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Laws,
	})
}

// GetLaw handles GET /api/laws/:id
func (h *LawHandler) GetLaw(c *gin.Context) {
	id := c.Param("id")

	result, err := h.lawService.GetLaw(c.Request.Context(), service.GetLawRequest{ID: id})
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
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Law,
	})
}

// SearchLawsRequest represents the request body for law search
type SearchLawsRequest struct {
	Query    string `json:"query" binding:"required"`
	NResults int    `json:"n_results"`
	UseAI    *bool  `json:"use_ai"`
}

// SearchLaws handles POST /api/laws/search
func (h *LawHandler) SearchLaws(c *gin.Context) {
	var req SearchLawsRequest
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

	if req.NResults <= 0 {
		req.NResults = 10
	}
	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	h.searchLaws(c, req.Query, req.NResults, useAI)
}

// SearchLawsGet handles GET /api/laws/search
func (h *LawHandler) SearchLawsGet(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_QUERY",
				"message": "Query parameter q is required",
			},
		})
		return
	}

	n := 10
	if nStr := c.Query("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil {
			n = parsed
		}
	}

	useAI := c.DefaultQuery("ai", "true") != "false"

	h.searchLaws(c, query, n, useAI)
}

func (h *LawHandler) searchLaws(c *gin.Context, query string, n int, useAI bool) {
	results, _, err := h.searchController.Search(c.Request.Context(), query, n, useAI)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"results": results,
			"count":   len(results),
		},
	})
}
