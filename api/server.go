package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"reelscript/downloader"
	"reelscript/events"
	"reelscript/pipeline"
	"reelscript/types"
)

// Storage is the persistence surface the controllers read and delete
// through. store.Store satisfies it; writes to videos and transcripts go
// through the pipeline instead.
type Storage interface {
	GetVideo(ctx context.Context, id string) (*types.Video, error)
	ListVideos(ctx context.Context) ([]*types.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	GetTranscript(ctx context.Context, videoID string) (*types.Transcript, error)
	SaveCollection(ctx context.Context, c *types.Collection) error
	GetCollection(ctx context.Context, id string) (*types.Collection, error)
	ListCollections(ctx context.Context) ([]*types.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
}

// Deps carries the collaborators the controllers need.
type Deps struct {
	Pipeline   *pipeline.Runner
	Store      Storage
	Hub        *events.Hub
	Downloader downloader.Downloader
	VideosDir  string
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	// Register resource routers
	RegisterVideoRoutes(r, deps)
	RegisterCollectionRoutes(r, deps)
	RegisterProgressRoutes(r, deps)
	RegisterHealthRoutes(r, deps)

	// Processed media served directly; filenames are pipeline-assigned.
	r.Static("/videos", deps.VideosDir)

	return r
}
