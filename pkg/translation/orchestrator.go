package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudgroundcontrol/live-translator/pkg/audio"
	"github.com/cloudgroundcontrol/live-translator/pkg/speech"
)

// Orchestrator sequences speech-to-text, language detection, the
// same-language shortcut and the two-hop fallback used when a language
// pair has no direct translation capability. Each invocation is
// stateless; concurrency is bounded by the caller.
//
// The model translates natively only into speech.PrivilegedLanguage.
// Any other target bounces through that language and then through a
// prompt-based decoding step that exploits the model's free-text
// completion as an ad hoc translator.
type Orchestrator struct {
	model      speech.Model
	synth      speech.Synthesizer
	sampleRate int
}

// NewOrchestrator wires the collaborators. A nil synthesizer switches
// the pipeline to text-only results.
func NewOrchestrator(model speech.Model, synth speech.Synthesizer, sampleRate int) *Orchestrator {
	if sampleRate <= 0 {
		sampleRate = audio.SampleRate
	}
	return &Orchestrator{model: model, synth: synth, sampleRate: sampleRate}
}

// Languages exposes the collaborator's supported language set.
func (o *Orchestrator) Languages() map[string]string {
	return o.model.Languages()
}

// TranslateAudio runs the full pipeline over one buffered segment.
// An empty Result with a nil error means no usable speech was found;
// any collaborator error aborts the invocation.
func (o *Orchestrator) TranslateAudio(ctx context.Context, samples []float32, sourceLang string, targetLang string) (Result, error) {
	// Transcription only, to obtain original text and detected language
	tr, err := o.model.Transcribe(ctx, samples, speech.TranscribeOptions{Language: sourceLang})
	if err != nil {
		return Result{}, fmt.Errorf("transcription failed: %w", err)
	}

	original := tr.Text
	detected := tr.Language
	if detected == "" {
		detected = speech.PrivilegedLanguage
	}

	if strings.TrimSpace(original) == "" {
		return Result{}, nil
	}

	translated, err := o.translateTranscription(ctx, samples, original, detected, targetLang)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		OriginalText:     original,
		TranslatedText:   translated,
		DetectedLanguage: detected,
		TargetLanguage:   targetLang,
	}
	if result.Empty() {
		return Result{}, nil
	}

	if o.synth != nil {
		result.Audio, err = o.synth.Synthesize(ctx, translated, targetLang)
		if err != nil {
			return Result{}, fmt.Errorf("synthesis failed: %w", err)
		}
	}
	return result, nil
}

func (o *Orchestrator) translateTranscription(ctx context.Context, samples []float32, original string, detected string, targetLang string) (string, error) {
	// Same-language shortcut
	if detected == targetLang {
		return original, nil
	}

	// Direct path: the model can translate into the privileged language
	// in a single call
	if targetLang == speech.PrivilegedLanguage {
		tr, err := o.model.Transcribe(ctx, samples, speech.TranscribeOptions{
			Language:  detected,
			Translate: true,
		})
		if err != nil {
			return "", fmt.Errorf("direct translation failed: %w", err)
		}
		return tr.Text, nil
	}

	// Two-hop fallback: obtain a privileged-language rendering first,
	// then prompt the model into the actual target
	pivot := original
	if detected != speech.PrivilegedLanguage {
		tr, err := o.model.Transcribe(ctx, samples, speech.TranscribeOptions{
			Language:  detected,
			Translate: true,
		})
		if err != nil {
			return "", fmt.Errorf("pivot translation failed: %w", err)
		}
		pivot = tr.Text
	}
	return o.promptTranslate(ctx, pivot, targetLang)
}

// promptTranslate submits an instruction string alongside a short silent
// buffer and reads the model's completion back as the translation. If
// the instruction is echoed verbatim it is stripped from the output.
func (o *Orchestrator) promptTranslate(ctx context.Context, text string, targetLang string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text to %s: %s", speech.DisplayName(targetLang), text)

	tr, err := o.model.Transcribe(ctx, audio.Silence(1, o.sampleRate), speech.TranscribeOptions{
		Language: targetLang,
		Prompt:   prompt,
	})
	if err != nil {
		return "", fmt.Errorf("prompt translation failed: %w", err)
	}

	translated := tr.Text
	if strings.Contains(translated, prompt) {
		translated = strings.TrimSpace(strings.ReplaceAll(translated, prompt, ""))
	}
	return translated, nil
}

// TranslateText runs the fallback chain directly on text, without the
// audio and buffering steps. Unlike the audio path, errors here surface
// to the caller so the request endpoint can report them.
func (o *Orchestrator) TranslateText(ctx context.Context, text string, sourceLang string, targetLang string) (string, error) {
	if sourceLang == targetLang {
		return text, nil
	}

	if targetLang == speech.PrivilegedLanguage {
		return o.promptTranslate(ctx, text, speech.PrivilegedLanguage)
	}

	pivot := text
	if sourceLang != speech.PrivilegedLanguage {
		var err error
		pivot, err = o.promptTranslate(ctx, text, speech.PrivilegedLanguage)
		if err != nil {
			return "", err
		}
	}
	return o.promptTranslate(ctx, pivot, targetLang)
}
