package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"reelscript/annotate"
	"reelscript/api"
	"reelscript/archive"
	"reelscript/config"
	"reelscript/downloader"
	"reelscript/events"
	"reelscript/feeds"
	"reelscript/llm"
	"reelscript/pipeline"
	"reelscript/store"
	"reelscript/transcribe"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	videosDir := config.GetEnvOrDefault("VIDEOS_DIR", config.VideosDir)
	if err := os.MkdirAll(videosDir, 0o755); err != nil {
		log.Fatalf("creating media directory: %v", err)
	}

	db, err := store.NewFromEnv()
	if err != nil {
		log.Fatalf("connecting to redis: %v", err)
	}
	defer db.Close()

	hub := events.NewHub(0)

	kafka, err := events.NewKafkaPublisherFromEnv(hub)
	if err != nil {
		log.Fatalf("connecting to kafka: %v", err)
	}
	if kafka != nil {
		defer kafka.Close()
	}

	providers := llm.ProvidersFromEnv()
	if len(providers) == 0 {
		log.Println("Warning: no LLM providers configured; annotation endpoints will fail")
	}

	dl := downloader.NewYtDlp(videosDir, hub)

	archiver, err := archive.NewArchiverFromEnv(context.Background())
	if err != nil {
		log.Fatalf("configuring archive: %v", err)
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Store:       db,
		Downloader:  dl,
		Recognizer:  transcribe.NewWhisperRecognizerFromEnv(),
		Translator:  annotate.NewTranslator(providers),
		Analyzer:    annotate.NewAnalyzer(providers),
		Appreciator: annotate.NewAppreciator(providers),
		Hub:         hub,
		Archiver:    archiverOrNil(archiver),
		VideosDir:   videosDir,
	})

	if watcher := feeds.NewWatcherFromEnv(runner); watcher != nil {
		go watcher.Run(context.Background())
	}

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := api.NewRouter(api.Deps{
		Pipeline:   runner,
		Store:      db,
		Hub:        hub,
		Downloader: dl,
		VideosDir:  videosDir,
	})

	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET    /api/health")
	log.Println("  POST   /api/videos/process")
	log.Println("  POST   /api/videos/info")
	log.Println("  GET    /api/videos")
	log.Println("  GET    /api/videos/:id")
	log.Println("  DELETE /api/videos/:id")
	log.Println("  POST   /api/videos/:id/translate")
	log.Println("  POST   /api/videos/:id/vocabulary")
	log.Println("  POST   /api/videos/:id/appreciate")
	log.Println("  CRUD   /api/collections")
	log.Println("  WS     /ws/progress")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// archiverOrNil keeps a nil *archive.Archiver from becoming a non-nil
// pipeline.Archiver interface value.
func archiverOrNil(a *archive.Archiver) pipeline.Archiver {
	if a == nil {
		return nil
	}
	return a
}
