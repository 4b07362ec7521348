package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"reelscript/annotate"
	"reelscript/config"
	"reelscript/downloader"
	"reelscript/events"
	"reelscript/transcribe"
	"reelscript/types"
)

// ErrUnsupportedURL rejects submissions for hosts outside the accepted
// source patterns.
var ErrUnsupportedURL = errors.New("unsupported video URL")

// Store is the persistence the pipeline requires: point lookups by id and
// URL plus whole-record upsert.
type Store interface {
	CreateVideo(ctx context.Context, v *types.Video) (existingID string, created bool, err error)
	SaveVideo(ctx context.Context, v *types.Video) error
	GetVideo(ctx context.Context, id string) (*types.Video, error)
	SaveTranscript(ctx context.Context, t *types.Transcript) error
	GetTranscript(ctx context.Context, videoID string) (*types.Transcript, error)
}

// Archiver receives ready transcripts for long-term storage. Archival is
// best-effort and never affects pipeline state.
type Archiver interface {
	ArchiveTranscript(ctx context.Context, v *types.Video, t *types.Transcript) error
}

// Runner drives a video through its state machine:
//
//	pending → downloading → transcribing → ready
//
// with failed reachable from downloading or transcribing. Ready and failed
// are terminal; a best-effort enrichment step after ready never changes
// them. Each submitted video runs in its own goroutine; stages inside one
// pipeline are strictly sequential.
type Runner struct {
	store       Store
	downloader  downloader.Downloader
	recognizer  transcribe.Recognizer
	translator  *annotate.Translator
	analyzer    *annotate.Analyzer
	appreciator *annotate.Appreciator
	hub         *events.Hub
	archiver    Archiver
	videosDir   string

	// semaphore bounding concurrent whisper runs
	workers chan struct{}
}

// Options wires a Runner's collaborators. Archiver may be nil.
type Options struct {
	Store       Store
	Downloader  downloader.Downloader
	Recognizer  transcribe.Recognizer
	Translator  *annotate.Translator
	Analyzer    *annotate.Analyzer
	Appreciator *annotate.Appreciator
	Hub         *events.Hub
	Archiver    Archiver
	VideosDir   string
	MaxWorkers  int
}

// NewRunner creates a pipeline runner.
func NewRunner(opts Options) *Runner {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = config.MaxConcurrentTranscriptions
	}
	return &Runner{
		store:       opts.Store,
		downloader:  opts.Downloader,
		recognizer:  opts.Recognizer,
		translator:  opts.Translator,
		analyzer:    opts.Analyzer,
		appreciator: opts.Appreciator,
		hub:         opts.Hub,
		archiver:    opts.Archiver,
		videosDir:   opts.VideosDir,
		workers:     make(chan struct{}, workers),
	}
}

// SubmitResult is returned to the submission endpoint immediately; the
// pipeline continues in the background.
type SubmitResult struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Submit validates the URL, deduplicates by exact URL match, creates the
// record in downloading state, and starts the background run. It never
// blocks on acquisition or transcription.
func (r *Runner) Submit(ctx context.Context, url string) (*SubmitResult, error) {
	if !downloader.SupportedURL(url) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	}

	v := &types.Video{
		ID:        uuid.New().String(),
		URL:       url,
		Source:    downloader.DetectSource(url),
		Status:    types.StatusDownloading,
		CreatedAt: time.Now().UTC(),
	}

	// Probe metadata up front so the response already carries a title.
	// Probe failure is not fatal: the download stage refreshes metadata.
	if info, err := r.downloader.Probe(ctx, url); err == nil {
		v.Title = info.Title
		v.Duration = info.Duration
		v.Thumbnail = info.Thumbnail
		v.Channel = info.Channel
	} else {
		log.Printf("[Pipeline] metadata probe failed for %s: %v", url, err)
	}

	id, created, err := r.store.CreateVideo(ctx, v)
	if err != nil {
		return nil, err
	}
	if !created {
		existing, err := r.store.GetVideo(ctx, id)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{
			VideoID:   existing.ID,
			Title:     existing.Title,
			Status:    existing.Status,
			Duplicate: true,
		}, nil
	}

	go r.run(v.ID, url)

	return &SubmitResult{VideoID: v.ID, Title: v.Title, Status: v.Status}, nil
}

// run executes download → transcribe → ready for one video. It uses a
// fresh context: once started, a pipeline runs to a terminal state.
func (r *Runner) run(videoID, url string) {
	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			r.fail(ctx, videoID, fmt.Sprintf("pipeline panic: %v", p))
		}
	}()

	v, err := r.store.GetVideo(ctx, videoID)
	if err != nil {
		log.Printf("[Pipeline] %s: record vanished before start: %v", videoID, err)
		return
	}

	// Stage 1: acquisition.
	result := r.downloader.Download(ctx, url, videoID)
	if !result.Success {
		r.failVideo(ctx, v, result.Error)
		return
	}

	v.Filename = result.Filename
	v.Title = firstNonEmpty(result.Title, v.Title)
	v.Thumbnail = firstNonEmpty(result.Thumbnail, v.Thumbnail)
	v.Channel = firstNonEmpty(result.Channel, v.Channel)
	v.Source = firstNonEmpty(result.Source, v.Source)
	if result.Duration > 0 {
		v.Duration = result.Duration
	}
	v.Status = types.StatusTranscribing
	if err := r.store.SaveVideo(ctx, v); err != nil {
		r.failVideo(ctx, v, err.Error())
		return
	}

	r.broadcast(events.TypeTranscribeStarted, map[string]any{"video_id": videoID})

	// Stage 2: recognition, bounded by the worker pool.
	recognized, err := r.transcribeBounded(ctx, filepath.Join(r.videosDir, v.Filename))
	if err != nil {
		r.failVideo(ctx, v, err.Error())
		return
	}

	// Stage 3: segment and persist the transcript, then flip to ready.
	segments := transcribe.BuildSegments(recognized.Chunks, config.MaxWordsPerSegment)
	transcript := &types.Transcript{
		VideoID:   videoID,
		Language:  firstNonEmpty(recognized.Language, "en"),
		Segments:  segments,
		FullText:  types.FullText(segments),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.SaveTranscript(ctx, transcript); err != nil {
		r.failVideo(ctx, v, err.Error())
		return
	}

	now := time.Now().UTC()
	v.Status = types.StatusReady
	v.CompletedAt = &now
	if err := r.store.SaveVideo(ctx, v); err != nil {
		log.Printf("[Pipeline] %s: saving ready state failed: %v", videoID, err)
		return
	}

	r.broadcast(events.TypeTranscribeCompleted, map[string]any{
		"video_id":      videoID,
		"segment_count": len(segments),
	})

	// Post-ready enrichment and archival are best-effort: a ready record
	// never regresses because of them.
	r.autoAppreciate(ctx, v, transcript)
	r.archive(ctx, videoID)
}

// transcribeBounded holds a worker slot for the duration of the CPU-bound
// recognition run so concurrent pipelines cannot saturate the host.
func (r *Runner) transcribeBounded(ctx context.Context, mediaPath string) (*transcribe.Result, error) {
	r.workers <- struct{}{}
	defer func() { <-r.workers }()
	return r.recognizer.Transcribe(ctx, mediaPath)
}

// autoAppreciate runs the title/appreciation call after ready. Any failure
// is swallowed and logged.
func (r *Runner) autoAppreciate(ctx context.Context, v *types.Video, t *types.Transcript) {
	if r.appreciator == nil || t.FullText == "" {
		return
	}

	appreciation, err := r.appreciator.Generate(ctx, t.FullText)
	if err != nil {
		log.Printf("[Pipeline] %s: auto appreciation failed: %v", v.ID, err)
		return
	}
	if appreciation.Empty() {
		return
	}

	t.Appreciation = appreciation
	if err := r.store.SaveTranscript(ctx, t); err != nil {
		log.Printf("[Pipeline] %s: saving appreciation failed: %v", v.ID, err)
		return
	}
	if v.Title == "" && appreciation.Title != "" {
		v.Title = appreciation.Title
		if err := r.store.SaveVideo(ctx, v); err != nil {
			log.Printf("[Pipeline] %s: saving generated title failed: %v", v.ID, err)
		}
	}
}

// archive pushes the current video and transcript to the configured
// archiver, if any.
func (r *Runner) archive(ctx context.Context, videoID string) {
	if r.archiver == nil {
		return
	}
	v, err := r.store.GetVideo(ctx, videoID)
	if err != nil {
		return
	}
	t, err := r.store.GetTranscript(ctx, videoID)
	if err != nil {
		return
	}
	if err := r.archiver.ArchiveTranscript(ctx, v, t); err != nil {
		log.Printf("[Pipeline] %s: archive failed: %v", videoID, err)
	}
}

// failVideo records a terminal failure with the stage's message preserved
// verbatim.
func (r *Runner) failVideo(ctx context.Context, v *types.Video, msg string) {
	v.Status = types.StatusFailed
	v.ErrorMessage = msg
	if err := r.store.SaveVideo(ctx, v); err != nil {
		log.Printf("[Pipeline] %s: saving failed state failed: %v", v.ID, err)
	}
	r.broadcast(events.TypeProcessError, map[string]any{"video_id": v.ID, "error": msg})
}

// fail records a terminal failure from the panic recovery path. A record
// that already reached ready stays ready: panics raised by the post-ready
// best-effort steps are logged and swallowed like their error returns.
func (r *Runner) fail(ctx context.Context, videoID, msg string) {
	v, err := r.store.GetVideo(ctx, videoID)
	if err != nil {
		return
	}
	if v.Status == types.StatusReady {
		log.Printf("[Pipeline] %s: post-ready failure ignored: %s", videoID, msg)
		return
	}
	r.failVideo(ctx, v, msg)
}

func (r *Runner) broadcast(eventType string, data map[string]any) {
	if r.hub != nil {
		r.hub.Broadcast(events.Event{Type: eventType, Data: data})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
