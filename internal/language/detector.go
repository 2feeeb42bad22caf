package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Lang is one of the two locales the knowledge base serves.
type Lang string

const (
	French  Lang = "fr"
	English Lang = "en"
)

// Detector classifies question text as French or English. Detection is fully
// deterministic: the same input always yields the same classification.
type Detector struct {
	inner lingua.LanguageDetector
}

// NewDetector builds a detector restricted to the two supported locales.
func NewDetector() *Detector {
	inner := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.French, lingua.English).
		Build()
	return &Detector{inner: inner}
}

// Detect returns the locale of text. Empty or ambiguous input defaults to
// English, which is also the knowledge base's pivot language.
func (d *Detector) Detect(text string) Lang {
	text = strings.TrimSpace(text)
	if text == "" {
		return English
	}
	detected, ok := d.inner.DetectLanguageOf(text)
	if !ok || detected != lingua.French {
		return English
	}
	return French
}
