package translation

import "strings"

// Result is the outcome of one pipeline invocation. A zero Result (or
// one whose translated text is blank) means "no result": the caller must
// not broadcast anything. Results are ephemeral and never persisted.
type Result struct {
	OriginalText     string `json:"original_text"`
	TranslatedText   string `json:"translated_text"`
	DetectedLanguage string `json:"language"`
	TargetLanguage   string `json:"-"`

	// Synthesized speech for the translated text. Nil in text-only mode.
	Audio []byte `json:"-"`
}

// Empty reports whether the invocation produced nothing worth sending.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.TranslatedText) == ""
}
