package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type ffprobeOutput struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// EnsureH264 re-encodes a downloaded video to H.264 when it uses another
// codec, replacing the file in place. iOS and most mobile browsers refuse
// VP9/AV1 mp4s, which some sources deliver even with an mp4 preference.
func EnsureH264(ctx context.Context, path string) error {
	codec, err := videoCodec(ctx, path)
	if err != nil {
		return err
	}
	if codec == "h264" {
		log.Printf("[Downloader] %s already H.264, skipping re-encode", filepath.Base(path))
		return nil
	}

	log.Printf("[Downloader] Re-encoding %s from %s to H.264...", filepath.Base(path), codec)

	tmp := strings.TrimSuffix(path, filepath.Ext(path)) + ".tmp.mp4"
	err = ffmpeg.Input(path).
		Output(tmp, ffmpeg.KwArgs{
			"c:v":    "libx264",
			"crf":    "23",
			"preset": "fast",
			"c:a":    "copy",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ffmpeg re-encode: %w", err)
	}

	if err := os.Remove(path); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	log.Printf("[Downloader] Re-encoded %s to H.264", filepath.Base(path))
	return nil
}

// videoCodec asks ffprobe for the codec of the first video stream.
func videoCodec(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffprobe: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return "", fmt.Errorf("parse ffprobe output: %w", err)
	}
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			return s.CodecName, nil
		}
	}
	return "", fmt.Errorf("no video stream in %s", filepath.Base(path))
}
