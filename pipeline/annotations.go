package pipeline

import (
	"context"
	"errors"
	"log"

	"reelscript/annotate"
	"reelscript/events"
	"reelscript/types"
)

// ErrNoTranscript is returned when an annotation is requested for a video
// that has no stored transcript yet.
var ErrNoTranscript = errors.New("no transcript available")

// Translate runs sentence translation for a video's transcript. When the
// transcript already carries translations the stored copy is returned
// without any provider calls and already is true.
func (r *Runner) Translate(ctx context.Context, videoID string) (t *types.Transcript, already bool, err error) {
	t, err = r.transcript(ctx, videoID)
	if err != nil {
		return nil, false, err
	}
	if annotate.Translated(t.Segments) {
		return t, true, nil
	}

	r.broadcast(events.TypeTranslateStarted, map[string]any{"video_id": videoID})

	translated, err := r.translator.Translate(ctx, t.Segments)
	if err != nil {
		r.broadcast(events.TypeTranslateError, map[string]any{"video_id": videoID, "error": err.Error()})
		return nil, false, err
	}

	t.Segments = translated
	if err := r.store.SaveTranscript(ctx, t); err != nil {
		return nil, false, err
	}

	r.broadcast(events.TypeTranslateCompleted, map[string]any{"video_id": videoID})
	return t, false, nil
}

// Vocabulary runs word-level vocabulary analysis for a video's transcript.
// A transcript that already has vocabulary entries is returned as-is.
func (r *Runner) Vocabulary(ctx context.Context, videoID string) (t *types.Transcript, already bool, err error) {
	t, err = r.transcript(ctx, videoID)
	if err != nil {
		return nil, false, err
	}
	if annotate.Analyzed(t.Segments) {
		return t, true, nil
	}

	r.broadcast(events.TypeVocabularyStarted, map[string]any{"video_id": videoID})

	analyzed, err := r.analyzer.Analyze(ctx, t.Segments)
	if err != nil {
		r.broadcast(events.TypeVocabularyError, map[string]any{"video_id": videoID, "error": err.Error()})
		return nil, false, err
	}

	t.Segments = analyzed
	if err := r.store.SaveTranscript(ctx, t); err != nil {
		return nil, false, err
	}

	r.broadcast(events.TypeVocabularyCompleted, map[string]any{"video_id": videoID})
	return t, false, nil
}

// Appreciate generates the title and appreciation block for a video's
// transcript on demand. A non-empty stored appreciation is returned as-is.
func (r *Runner) Appreciate(ctx context.Context, videoID string) (t *types.Transcript, already bool, err error) {
	t, err = r.transcript(ctx, videoID)
	if err != nil {
		return nil, false, err
	}
	if t.Appreciation != nil && !t.Appreciation.Empty() {
		return t, true, nil
	}

	r.broadcast(events.TypeAppreciationStarted, map[string]any{"video_id": videoID})

	appreciation, err := r.appreciator.Generate(ctx, t.FullText)
	if err != nil {
		r.broadcast(events.TypeAppreciationError, map[string]any{"video_id": videoID, "error": err.Error()})
		return nil, false, err
	}

	t.Appreciation = appreciation
	if err := r.store.SaveTranscript(ctx, t); err != nil {
		return nil, false, err
	}

	if !appreciation.Empty() && appreciation.Title != "" {
		if v, err := r.store.GetVideo(ctx, videoID); err == nil && v.Title == "" {
			v.Title = appreciation.Title
			if err := r.store.SaveVideo(ctx, v); err != nil {
				log.Printf("[Pipeline] %s: saving generated title failed: %v", videoID, err)
			}
		}
	}

	r.broadcast(events.TypeAppreciationCompleted, map[string]any{"video_id": videoID})
	return t, false, nil
}

// transcript loads the stored transcript for a video, translating a store
// miss into ErrNoTranscript.
func (r *Runner) transcript(ctx context.Context, videoID string) (*types.Transcript, error) {
	if _, err := r.store.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	t, err := r.store.GetTranscript(ctx, videoID)
	if err != nil {
		return nil, ErrNoTranscript
	}
	return t, nil
}
