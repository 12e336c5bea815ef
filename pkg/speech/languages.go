package speech

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supportedLanguages mirrors the Whisper tokenizer's language set.
var supportedLanguages = []string{
	"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr",
	"pl", "ca", "nl", "ar", "sv", "it", "id", "hi", "fi", "vi",
	"he", "uk", "el", "ms", "cs", "ro", "da", "hu", "ta", "no",
	"th", "ur", "hr", "bg", "lt", "la", "mi", "ml", "cy", "sk",
	"te", "fa", "lv", "bn", "sr", "az", "sl", "kn", "et", "mk",
	"br", "eu", "is", "hy", "ne", "mn", "bs", "kk", "sq", "sw",
	"gl", "mr", "pa", "si", "km", "sn", "yo", "so", "af", "oc",
	"ka", "be", "tg", "sd", "gu", "am", "yi", "lo", "uz", "fo",
	"ht", "ps", "tk", "nn", "mt", "sa", "lb", "my", "bo", "tl",
	"mg", "as", "tt", "haw", "ln", "ha", "ba", "jw", "su",
}

// DisplayName returns the English display name for a language code, or
// the code itself when no name is known. The prompt translation step
// embeds this name in its instruction string.
func DisplayName(code string) string {
	tag := language.Make(code)
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// LanguageNames maps every supported code to its display name.
func LanguageNames() map[string]string {
	names := make(map[string]string, len(supportedLanguages))
	for _, code := range supportedLanguages {
		names[code] = DisplayName(code)
	}
	return names
}

// IsSupported reports whether the model accepts the language code.
func IsSupported(code string) bool {
	for _, c := range supportedLanguages {
		if c == code {
			return true
		}
	}
	return false
}
