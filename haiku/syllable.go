package haiku

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EstimateSyllables estimates the syllable count of one line of English
// text by summing per-word estimates. It is the default SyllableCounter.
func EstimateSyllables(line string) int {
	total := 0
	for _, w := range strings.Fields(line) {
		total += wordSyllables(w)
	}
	return total
}

// wordSyllables counts maximal vowel runs, with a correction for the
// usual silent terminal 'e' ("pond" 1, "silence" 2, "little" 2). Words
// with no vowels at all (initialisms, stray punctuation survivors)
// count as one syllable.
func wordSyllables(word string) int {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if w == "" {
		return 0
	}

	groups := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			groups++
		}
		prevVowel = v
	}

	if groups > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		// decode the rune before the final 'e'; byte indexing would hit
		// a continuation byte when that character is multibyte
		beforeE, _ := utf8.DecodeLastRuneInString(w[:len(w)-1])
		if !isVowel(beforeE) {
			groups--
		}
	}
	if groups == 0 {
		groups = 1
	}
	return groups
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
