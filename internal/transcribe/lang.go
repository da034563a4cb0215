package transcribe

import (
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// languageNames maps ISO 639-1 codes to the label stored on transcripts.
// The deployment primarily serves Indian languages plus a handful of common
// western ones; unknown codes pass through unchanged as their raw code.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"gu": "Gujarati",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"ml": "Malayalam",
	"mr": "Marathi",
	"kn": "Kannada",
	"pa": "Punjabi",
	"ur": "Urdu",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"ru": "Russian",
	"ar": "Arabic",
	"zh": "Chinese",
	"ja": "Japanese",
}

// LanguageLabel resolves a code to its human-readable label.
func LanguageLabel(code string) string {
	if code == "" || code == LangUnknown {
		return LangUnknown
	}
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// codeForLanguageName reverses the table for backends that report the
// language as a spelled-out name ("french" → "fr").
func codeForLanguageName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return LangUnknown
	}
	for code, label := range languageNames {
		if strings.EqualFold(label, name) {
			return code
		}
	}
	return LangUnknown
}

// detectorLanguages is the candidate set the statistical detector picks
// from, matching the label table.
var detectorLanguages = []lingua.Language{
	lingua.English,
	lingua.Hindi,
	lingua.Gujarati,
	lingua.Bengali,
	lingua.Tamil,
	lingua.Telugu,
	lingua.Marathi,
	lingua.Punjabi,
	lingua.Urdu,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Arabic,
	lingua.Chinese,
	lingua.Japanese,
}

// Detector is the dictionary-free statistical language identifier used when
// neither backend reported a usable language code.
type Detector struct {
	det lingua.LanguageDetector
}

func NewDetector() *Detector {
	return &Detector{
		det: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectorLanguages...).
			Build(),
	}
}

// DetectCode returns the ISO 639-1 code for text, or "" when the text is too
// short (under 3 characters after trimming) or the detection is inconclusive.
func (d *Detector) DetectCode(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 3 {
		return ""
	}
	lang, ok := d.det.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
