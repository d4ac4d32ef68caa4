// Package language detects the natural language of pruned page text.
package language

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// MaxSampleRunes bounds how much text is handed to the detector.
const MaxSampleRunes = 2000

// Supported matches the languages of the pruner's term dictionaries plus
// a few common neighbours.
var Supported = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Japanese,
	lingua.Korean,
	lingua.Chinese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// shared builds the lingua detector on first use. It is safe for
// concurrent use once built.
func shared() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(Supported...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}

// Detector is the default LanguageDetector.
type Detector struct{}

// New creates a Detector. The underlying models load lazily.
func New() *Detector {
	return &Detector{}
}

// Detect returns the lower-case ISO 639-1 code of text and the
// detector's confidence in it. Undetermined text yields ("", 0).
func (Detector) Detect(text string) (string, float64) {
	sample := sample(text)
	if sample == "" {
		return "", 0
	}
	d := shared()
	lang, ok := d.DetectLanguageOf(sample)
	if !ok {
		return "", 0
	}
	return strings.ToLower(lang.IsoCode639_1().String()), d.ComputeLanguageConfidence(sample, lang)
}

func sample(text string) string {
	text = strings.TrimSpace(text)
	n := 0
	for i := range text {
		if n == MaxSampleRunes {
			return text[:i]
		}
		n++
	}
	return text
}
