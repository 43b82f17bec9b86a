package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lexintent-backend/models"
	"lexintent-backend/repository"
	"lexintent-backend/service"
	"lexintent-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorpusHandler handles admin HTTP requests for corpus snapshots
type CorpusHandler struct {
	snapshotRepo    *repository.SnapshotRepository
	ingestService   *service.IngestService
	store           storage.Store
	maxSnapshotSize int64
}

// NewCorpusHandler creates a new corpus handler
func NewCorpusHandler(snapshotRepo *repository.SnapshotRepository, ingestService *service.IngestService, store storage.Store) *CorpusHandler {
	return &CorpusHandler{
		snapshotRepo:    snapshotRepo,
		ingestService:   ingestService,
		store:           store,
		maxSnapshotSize: 50 * 1024 * 1024, // 50MB
	}
}

// UploadSnapshot handles POST /api/admin/snapshots/:dataset
func (h *CorpusHandler) UploadSnapshot(c *gin.Context) {
	dataset := models.Dataset(c.Param("dataset"))
	if !dataset.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DATASET",
				"message": "Dataset must be laws or debates",
			},
		})
		return
	}

	// Get file from form
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	// Validate file size
	if fileHeader.Size > h.maxSnapshotSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxSnapshotSize),
			},
		})
		return
	}

	// Snapshots are JSON record arrays
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".json") {
			mimeType = "application/json"
		}
	}
	if mimeType != "application/json" && mimeType != "text/plain" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Snapshot must be a JSON file",
			},
		})
		return
	}

	// Open file
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	// Generate snapshot ID
	snapshotID := uuid.New()

	// Upload to storage
	storagePath, err := h.store.Put(c.Request.Context(), snapshotID, string(dataset), fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to store snapshot: %v", err),
			},
		})
		return
	}

	// Create snapshot record in database
	record := &models.CorpusSnapshot{
		ID:          snapshotID,
		Dataset:     dataset,
		FileName:    fileHeader.Filename,
		StoragePath: storagePath,
		ContentType: mimeType,
		SizeBytes:   fileHeader.Size,
	}

	err = h.snapshotRepo.Create(c.Request.Context(), record)
	if err != nil {
		// Try to clean up stored file
		h.store.Delete(c.Request.Context(), storagePath)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to save snapshot record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

// ListSnapshots handles GET /api/admin/snapshots
func (h *CorpusHandler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.snapshotRepo.List(c.Request.Context())
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
		"data":    snapshots,
	})
}

// IngestDataset handles POST /api/admin/ingest/:dataset
func (h *CorpusHandler) IngestDataset(c *gin.Context) {
	dataset := models.Dataset(c.Param("dataset"))

	// The JSON body is optional; force can also arrive as a query param
	var reqBody struct {
		Force bool `json:"force"`
	}
	_ = c.ShouldBindJSON(&reqBody)
	force := reqBody.Force || c.Query("force") == "true"

	result, err := h.ingestService.IngestLatestSnapshot(c.Request.Context(), service.IngestSnapshotRequest{
		Dataset: dataset,
		Force:   force,
	})
	if err != nil {
		h.ingestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

func (h *CorpusHandler) ingestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDataset):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DATASET",
				"message": "Dataset must be laws or debates",
			},
		})
	case errors.Is(err, service.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SNAPSHOT_NOT_FOUND",
				"message": "No snapshot has been uploaded for this dataset",
			},
		})
	case errors.Is(err, service.ErrCollectionNotEmpty):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "COLLECTION_NOT_EMPTY",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INGEST_FAILED",
				"message": err.Error(),
			},
		})
	}
}
