package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"reelscript/pipeline"
	"reelscript/store"
)

// RegisterVideoRoutes registers the video ingestion and transcript
// annotation endpoints.
func RegisterVideoRoutes(r *gin.Engine, deps Deps) {
	g := r.Group("/api/videos")
	g.POST("/process", handleProcessVideo(deps))
	g.POST("/info", handleVideoInfo(deps))
	g.GET("", handleListVideos(deps))
	g.GET("/:id", handleGetVideo(deps))
	g.DELETE("/:id", handleDeleteVideo(deps))
	g.POST("/:id/translate", handleTranslate(deps))
	g.POST("/:id/vocabulary", handleVocabulary(deps))
	g.POST("/:id/appreciate", handleAppreciate(deps))
}

// ProcessVideoRequest is the submission payload.
type ProcessVideoRequest struct {
	URL string `json:"url" binding:"required"`
}

// handleProcessVideo accepts a URL and starts the pipeline. The response
// returns once the record exists; processing continues in the background.
func handleProcessVideo(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProcessVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := deps.Pipeline.Submit(c.Request.Context(), req.URL)
		if err != nil {
			if errors.Is(err, pipeline.ErrUnsupportedURL) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		status := http.StatusAccepted
		if res.Duplicate {
			status = http.StatusOK
		}
		c.JSON(status, res)
	}
}

// handleVideoInfo probes metadata for a URL without starting a download.
func handleVideoInfo(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProcessVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		info, err := deps.Downloader.Probe(c.Request.Context(), req.URL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func handleListVideos(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		videos, err := deps.Store.ListVideos(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
	}
}

// handleGetVideo returns the video record with its transcript attached
// when one exists.
func handleGetVideo(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		v, err := deps.Store.GetVideo(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := gin.H{"video": v}
		if t, err := deps.Store.GetTranscript(c.Request.Context(), id); err == nil {
			resp["transcript"] = t
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleDeleteVideo removes the record, its transcript, and the media file.
func handleDeleteVideo(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		v, err := deps.Store.GetVideo(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := deps.Store.DeleteVideo(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if v.Filename != "" {
			if err := os.Remove(filepath.Join(deps.VideosDir, v.Filename)); err != nil && !os.IsNotExist(err) {
				log.Printf("[API] removing media for %s: %v", id, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func handleTranslate(deps Deps) gin.HandlerFunc {
	return annotationHandler(deps, func(c *gin.Context, id string) (any, bool, error) {
		return deps.Pipeline.Translate(c.Request.Context(), id)
	})
}

func handleVocabulary(deps Deps) gin.HandlerFunc {
	return annotationHandler(deps, func(c *gin.Context, id string) (any, bool, error) {
		return deps.Pipeline.Vocabulary(c.Request.Context(), id)
	})
}

func handleAppreciate(deps Deps) gin.HandlerFunc {
	return annotationHandler(deps, func(c *gin.Context, id string) (any, bool, error) {
		return deps.Pipeline.Appreciate(c.Request.Context(), id)
	})
}

// annotationHandler is the shared shape of the three enrichment endpoints:
// 404 on unknown video, 409 when no transcript exists yet, 502 when every
// provider failed, and the stored result either way.
func annotationHandler(deps Deps, run func(c *gin.Context, id string) (any, bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		result, already, err := run(c, id)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			case errors.Is(err, pipeline.ErrNoTranscript):
				c.JSON(http.StatusConflict, gin.H{"error": "transcript not ready"})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"transcript": result, "already_done": already})
	}
}
