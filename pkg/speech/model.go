package speech

import "context"

// PrivilegedLanguage is the one language the model can translate
// arbitrary-source audio into natively. Every other target goes through
// the two-hop prompt fallback in pkg/translation.
const PrivilegedLanguage = "en"

// TranscribeOptions controls a single decoding request.
type TranscribeOptions struct {
	// Language hints the source language. Empty means auto-detect.
	Language string

	// Translate requests the model's native translate task, which
	// always targets PrivilegedLanguage.
	Translate bool

	// Prompt is free-text decoding context. The prompt translation path
	// pairs it with silent audio to coax a text-to-text completion out
	// of the model.
	Prompt string
}

// Transcription is the fixed result record for a decoding request.
// Absent fields default to empty strings.
type Transcription struct {
	Text     string
	Language string
}

// Model is the speech-model collaborator. Implementations may be slow
// and may fail; callers treat every error as a no-result outcome.
type Model interface {
	Transcribe(ctx context.Context, samples []float32, opts TranscribeOptions) (Transcription, error)
	Languages() map[string]string
}

// Synthesizer converts text into spoken audio. A nil synthesizer means
// the pipeline returns text-only results.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang string) ([]byte, error)
}
