package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reelscript/store"
	"reelscript/types"
)

// RegisterCollectionRoutes registers study collection CRUD endpoints.
func RegisterCollectionRoutes(r *gin.Engine, deps Deps) {
	g := r.Group("/api/collections")
	g.POST("", handleCreateCollection(deps))
	g.GET("", handleListCollections(deps))
	g.GET("/:id", handleGetCollection(deps))
	g.DELETE("/:id", handleDeleteCollection(deps))
	g.POST("/:id/add", handleAddToCollection(deps))
	g.DELETE("/:id/remove/:videoID", handleRemoveFromCollection(deps))
}

// CreateCollectionRequest is the creation payload.
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddToCollectionRequest links a video into a collection.
type AddToCollectionRequest struct {
	VideoID string `json:"video_id" binding:"required"`
	Notes   string `json:"notes"`
}

func handleCreateCollection(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := &types.Collection{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := deps.Store.SaveCollection(c.Request.Context(), col); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, col)
	}
}

func handleListCollections(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cols, err := deps.Store.ListCollections(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": cols, "count": len(cols)})
	}
}

func handleGetCollection(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := deps.Store.GetCollection(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, col)
	}
}

func handleDeleteCollection(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := deps.Store.DeleteCollection(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

// handleAddToCollection appends a video reference. Adding the same video
// twice is a no-op that returns the unchanged collection.
func handleAddToCollection(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddToCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col, err := deps.Store.GetCollection(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if _, err := deps.Store.GetVideo(c.Request.Context(), req.VideoID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}

		for _, item := range col.Items {
			if item.VideoID == req.VideoID {
				c.JSON(http.StatusOK, col)
				return
			}
		}

		col.Items = append(col.Items, types.CollectionItem{
			ID:      uuid.New().String(),
			VideoID: req.VideoID,
			Notes:   req.Notes,
			AddedAt: time.Now().UTC(),
		})
		if err := deps.Store.SaveCollection(c.Request.Context(), col); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, col)
	}
}

func handleRemoveFromCollection(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := deps.Store.GetCollection(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		videoID := c.Param("videoID")
		kept := col.Items[:0]
		for _, item := range col.Items {
			if item.VideoID != videoID {
				kept = append(kept, item)
			}
		}
		col.Items = kept

		if err := deps.Store.SaveCollection(c.Request.Context(), col); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, col)
	}
}
