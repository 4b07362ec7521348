package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"reelscript/config"
	"reelscript/types"
)

// Archiver uploads ready transcripts and their media to an S3 bucket for
// long-term storage. It is attached to the pipeline only when a bucket is
// configured.
type Archiver struct {
	s3        *S3
	bucket    string
	videosDir string
}

// NewArchiverFromEnv returns nil when ARCHIVE_S3_BUCKET is unset, which
// disables archival entirely.
func NewArchiverFromEnv(ctx context.Context) (*Archiver, error) {
	bucket := os.Getenv("ARCHIVE_S3_BUCKET")
	if bucket == "" {
		return nil, nil
	}

	s3c, err := NewS3(ctx, S3Config{
		Region:       os.Getenv("AWS_REGION"),
		UsePathStyle: config.GetEnvBool("ARCHIVE_S3_PATH_STYLE", false),
	})
	if err != nil {
		return nil, fmt.Errorf("building archive S3 client: %w", err)
	}

	log.Printf("[Archive] archiving transcripts to bucket %s", bucket)
	return &Archiver{
		s3:        s3c,
		bucket:    bucket,
		videosDir: config.GetEnvOrDefault("VIDEOS_DIR", config.VideosDir),
	}, nil
}

// ArchiveTranscript uploads the transcript JSON and, when present on disk,
// the media file. The transcript upload is authoritative; a media upload
// failure is logged and ignored.
func (a *Archiver) ArchiveTranscript(ctx context.Context, v *types.Video, t *types.Transcript) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding transcript %s: %w", t.VideoID, err)
	}

	key := "transcripts/" + t.VideoID + ".json"
	if err := a.s3.Put(ctx, a.bucket, key, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("uploading transcript %s: %w", t.VideoID, err)
	}

	if v.Filename != "" {
		if err := a.archiveMedia(ctx, v.Filename); err != nil {
			log.Printf("[Archive] media upload for %s skipped: %v", v.ID, err)
		}
	}
	return nil
}

func (a *Archiver) archiveMedia(ctx context.Context, filename string) error {
	f, err := os.Open(filepath.Join(a.videosDir, filename))
	if err != nil {
		return err
	}
	defer f.Close()

	return a.s3.Put(ctx, a.bucket, "videos/"+filename, f, "video/mp4")
}
