package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelscript/config"
)

// WhisperRecognizer shells out to a faster-whisper helper script that
// prints the recognition result as JSON on stdout: language, duration, and
// segments with word-level timestamps.
type WhisperRecognizer struct {
	python string
	script string
	model  string
	device string
	lang   string
}

// NewWhisperRecognizerFromEnv builds a recognizer from the environment.
// WHISPER_PY (default python3), WHISPER_SCRIPT (default
// scripts/faster_whisper.py), WHISPER_MODEL (default base), WHISPER_DEVICE
// (default auto), WHISPER_LANGUAGE (default en).
func NewWhisperRecognizerFromEnv() *WhisperRecognizer {
	return &WhisperRecognizer{
		python: config.GetEnvOrDefault("WHISPER_PY", "python3"),
		script: config.GetEnvOrDefault("WHISPER_SCRIPT", "scripts/faster_whisper.py"),
		model:  config.GetEnvOrDefault("WHISPER_MODEL", "base"),
		device: config.GetEnvOrDefault("WHISPER_DEVICE", "auto"),
		lang:   config.GetEnvOrDefault("WHISPER_LANGUAGE", "en"),
	}
}

// Transcribe runs the helper against a local media file and parses its
// JSON output.
func (w *WhisperRecognizer) Transcribe(ctx context.Context, mediaPath string) (*Result, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return nil, fmt.Errorf("media not found: %s", mediaPath)
	}

	log.Printf("[Whisper] Transcribing: %s (model=%s, lang=%s)", filepath.Base(mediaPath), w.model, w.lang)

	cmd := exec.CommandContext(ctx, w.python, w.script,
		"--audio", mediaPath,
		"--model", w.model,
		"--device", w.device,
		"--language", w.lang,
		"--word-timestamps",
	)
	cmd.Env = os.Environ()

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("whisper failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("run whisper helper: %w", err)
	}

	var result Result
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	log.Printf("[Whisper] Done: %d chunks, language=%s", len(result.Chunks), result.Language)
	return &result, nil
}
