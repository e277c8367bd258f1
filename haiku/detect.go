// Package haiku classifies post text against the 5-7-5 three-line
// English haiku form and persists accepted matches.
package haiku

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// English is the ISO 639-3 code the language gate accepts.
const English = "eng"

// LanguageDetector guesses the dominant language of a text as an ISO
// 639-3 code. ok=false means no usable guess, which the detector treats
// as "not English".
type LanguageDetector func(text string) (lang string, ok bool)

// SyllableCounter estimates the syllable count of a single line.
type SyllableCounter func(line string) int

// DetectLanguage is the default LanguageDetector, backed by trigram
// language identification over the full text.
func DetectLanguage(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "", false
	}
	code := whatlanggo.LangToString(info.Lang)
	if code == "" {
		return "", false
	}
	return code, true
}

// Detector applies the haiku heuristic. Both capability seams default
// to the in-package implementations; swap them for different language
// or syllable models.
type Detector struct {
	DetectLanguage LanguageDetector
	CountSyllables SyllableCounter
}

func NewDetector() *Detector {
	return &Detector{
		DetectLanguage: DetectLanguage,
		CountSyllables: EstimateSyllables,
	}
}

// chunkSize is the word count per synthetic line when the text has no
// explicit line breaks. Chunks of five words approximate verse
// structure; this is a documented approximation, not a syllable-aware
// split.
const chunkSize = 5

// SegmentLines splits text into candidate verse lines. Texts with
// literal line breaks split on them directly; otherwise the whitespace
// tokens are grouped into chunks of five words.
func SegmentLines(text string) []string {
	if strings.Contains(text, "\n") {
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSuffix(l, "\r")
		}
		return lines
	}

	words := strings.Fields(text)
	var lines []string
	for len(words) > 0 {
		n := chunkSize
		if len(words) < n {
			n = len(words)
		}
		lines = append(lines, strings.Join(words[:n], " "))
		words = words[n:]
	}
	return lines
}

// Detect reports whether text is a haiku: dominant language English,
// exactly three lines, syllable counts exactly 5-7-5. On acceptance it
// returns the three lines.
func (d *Detector) Detect(text string) ([]string, bool) {
	lang, ok := d.DetectLanguage(text)
	if !ok || lang != English {
		return nil, false
	}

	lines := SegmentLines(text)
	if len(lines) != 3 {
		return nil, false
	}

	want := [3]int{5, 7, 5}
	for i, line := range lines {
		if d.CountSyllables(line) != want[i] {
			return nil, false
		}
	}
	return lines, true
}
