package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lexintent-backend/models"
	"lexintent-backend/service"

	"github.com/gin-gonic/gin"
)

// DebateHandler handles HTTP requests for debate search and timelines
type DebateHandler struct {
	analysisService *service.AnalysisService
}

// NewDebateHandler creates a new debate handler
func NewDebateHandler(analysisService *service.AnalysisService) *DebateHandler {
	return &DebateHandler{
		analysisService: analysisService,
	}
}

// SearchDebatesRequest represents the request body for debate search
type SearchDebatesRequest struct {
	Query       string `json:"query" binding:"required"`
	NResults    int    `json:"n_results"`
	PartyFilter string `json:"party_filter"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
}

// SearchDebates handles POST /api/debates/search
func (h *DebateHandler) SearchDebates(c *gin.Context) {
	var req SearchDebatesRequest
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

	h.searchDebates(c, service.SearchDebatesRequest{
		Query:    req.Query,
		NResults: req.NResults,
		Party:    req.PartyFilter,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
}

// SearchDebatesGet handles GET /api/debates/search
func (h *DebateHandler) SearchDebatesGet(c *gin.Context) {
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

	h.searchDebates(c, service.SearchDebatesRequest{
		Query:    query,
		NResults: n,
		Party:    c.Query("party"),
	})
}

func (h *DebateHandler) searchDebates(c *gin.Context, req service.SearchDebatesRequest) {
	results, err := h.analysisService.SearchDebates(c.Request.Context(), req)
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

// GetTimeline handles GET /api/timeline
func (h *DebateHandler) GetTimeline(c *gin.Context) {
	events, err := h.analysisService.TimelineForTopic(c.Request.Context(), c.Query("topic"))
	h.timelineResponse(c, events, err)
}

// GetLawTimeline handles GET /api/timeline/:lawId
func (h *DebateHandler) GetLawTimeline(c *gin.Context) {
	events, err := h.analysisService.TimelineForLaw(c.Request.Context(), c.Param("lawId"))
	if err != nil && errors.Is(err, service.ErrLawNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Law not found",
			},
		})
		return
	}
	h.timelineResponse(c, events, err)
}

// timelineResponse renders events, treating a corpus with no datable
// debates as an empty timeline rather than an error.
func (h *DebateHandler) timelineResponse(c *gin.Context, events []models.TimelineEvent, err error) {
	if err != nil {
		if errors.Is(err, service.ErrNoTimeline) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    []models.TimelineEvent{},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TIMELINE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    events,
	})
}
