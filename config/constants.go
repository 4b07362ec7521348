package config

import "time"

// Transcription Constants
const (
	// MaxWordsPerSegment caps how many words a display segment may hold
	// before the segmenter forces a split
	MaxWordsPerSegment = 12

	// MaxConcurrentTranscriptions limits the number of whisper runs
	// executing simultaneously (CPU/accelerator bound)
	MaxConcurrentTranscriptions = 2
)

// Annotation Constants
const (
	// TranslationBatchSize is the number of sentences per translation call
	TranslationBatchSize = 20

	// VocabularyBatchSize is the number of segments per vocabulary call
	VocabularyBatchSize = 20

	// ProviderTimeout bounds a single text-generation provider call
	ProviderTimeout = 60 * time.Second
)

// Directory Constants
const (
	// DataDir is the base directory for all persistent artifacts
	DataDir = "data"

	// VideosDir is the directory holding downloaded media files
	VideosDir = "data/videos"
)
