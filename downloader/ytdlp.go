package downloader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reelscript/config"
	"reelscript/events"
)

// bestvideo+bestaudio with an mp4 preference so iOS clients can play the
// file without transcoding in most cases.
const formatSelector = "bestvideo[vcodec^=avc1][ext=mp4]+bestaudio[ext=m4a]/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// YtDlp downloads videos with the local yt-dlp binary and reports
// progress through the hub as it parses yt-dlp's --newline output.
type YtDlp struct {
	binary    string
	videosDir string
	hub       *events.Hub
}

// NewYtDlp creates a downloader storing media under videosDir. The binary
// path comes from YTDLP_PATH (default "yt-dlp" on PATH).
func NewYtDlp(videosDir string, hub *events.Hub) *YtDlp {
	return &YtDlp{
		binary:    config.GetEnvOrDefault("YTDLP_PATH", "yt-dlp"),
		videosDir: videosDir,
		hub:       hub,
	}
}

type ytdlpInfo struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
	Channel   string  `json:"channel"`
	Uploader  string  `json:"uploader"`
	Ext       string  `json:"ext"`
}

// Probe fetches video metadata without downloading (yt-dlp -J).
func (y *YtDlp) Probe(ctx context.Context, url string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.binary, "-J", "--no-warnings", url)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed: %s", firstLine(stderr.String()))
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}

	return &Info{
		ID:        info.ID,
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Channel:   channelOf(info),
		Source:    DetectSource(url),
	}, nil
}

// progressRe matches yt-dlp --newline progress lines, e.g.
// "[download]  42.3% of 10.00MiB at  1.20MiB/s ETA 00:05"
var progressRe = regexp.MustCompile(`\[download\]\s+([0-9.]+)%(?:.*?at\s+(\S+))?`)

// Download fetches the video and returns the stage outcome. Errors are
// reported in the Result rather than as a Go error: acquisition failure is
// a normal terminal pipeline state, not an exceptional one.
func (y *YtDlp) Download(ctx context.Context, url, videoID string) *Result {
	source := DetectSource(url)

	y.broadcast(events.TypeDownloadStarted, map[string]any{"video_id": videoID, "url": url})

	cmd := exec.CommandContext(ctx, y.binary,
		"-o", filepath.Join(y.videosDir, "%(id)s.%(ext)s"),
		"-f", formatSelector,
		"--merge-output-format", "mp4",
		"--newline",
		"--no-warnings",
		"--print", "after_move:filepath",
		"--no-simulate",
		url,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &Result{Success: false, Error: err.Error()}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &Result{Success: false, Error: err.Error()}
	}

	// yt-dlp interleaves progress lines and the final --print line on
	// stdout; the last non-progress line is the moved file's path.
	var outputPath string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if percent, speed, ok := parseProgressLine(line); ok {
			y.broadcast(events.TypeDownloadProgress, map[string]any{
				"video_id": videoID,
				"progress": percent,
				"speed":    speed,
			})
			continue
		}
		if !strings.HasPrefix(line, "[") {
			outputPath = line
		}
	}

	if err := cmd.Wait(); err != nil {
		msg := firstLine(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		y.broadcast(events.TypeDownloadError, map[string]any{"video_id": videoID, "error": msg})
		return &Result{Success: false, Error: msg}
	}
	if outputPath == "" {
		msg := "yt-dlp produced no output file"
		y.broadcast(events.TypeDownloadError, map[string]any{"video_id": videoID, "error": msg})
		return &Result{Success: false, Error: msg}
	}

	y.broadcast(events.TypeDownloadProgress, map[string]any{
		"video_id": videoID,
		"progress": 100.0,
		"status":   "processing",
	})

	if err := EnsureH264(ctx, outputPath); err != nil {
		// Playback compatibility is best-effort; the original file still works.
		log.Printf("[Downloader] H.264 re-encode failed for %s: %v", filepath.Base(outputPath), err)
	}

	info, err := y.Probe(ctx, url)
	if err != nil {
		log.Printf("[Downloader] metadata refresh failed: %v", err)
		info = &Info{Source: source}
	}

	result := &Result{
		Success:   true,
		Filename:  filepath.Base(outputPath),
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Channel:   info.Channel,
		Source:    source,
	}
	y.broadcast(events.TypeDownloadCompleted, map[string]any{
		"video_id": videoID,
		"filename": result.Filename,
		"title":    result.Title,
	})
	return result
}

func (y *YtDlp) broadcast(eventType string, data map[string]any) {
	if y.hub != nil {
		y.hub.Broadcast(events.Event{Type: eventType, Data: data})
	}
}

// parseProgressLine extracts percentage and speed from a yt-dlp progress
// line, reporting ok=false for non-progress lines.
func parseProgressLine(line string) (percent float64, speed string, ok bool) {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return percent, m[2], true
}

func channelOf(info ytdlpInfo) string {
	if info.Channel != "" {
		return info.Channel
	}
	return info.Uploader
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
