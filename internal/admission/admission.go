package admission

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var englishRun = regexp.MustCompile(`[a-zA-Z]{2,}`)

// ShouldCheck decides whether a prompt is worth sending to the analyzer.
// Slash commands, Chinese-dominant text, and trivially short prompts are
// turned away before any network call happens.
func ShouldCheck(text string) bool {
	trimmed := strings.TrimSpace(norm.NFC.String(text))
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "/") {
		return false
	}
	if isPureCJK(trimmed) {
		return false
	}
	if isPrimarilyCJK(trimmed) {
		return false
	}
	if !englishRun.MatchString(trimmed) {
		return false
	}
	if len(strings.Fields(trimmed)) < 3 {
		return false
	}
	return true
}

// isCJK reports whether r falls in the CJK Unified Ideographs block
func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isPureCJK reports whether no Latin letters survive once whitespace,
// digits, and punctuation are ignored
func isPureCJK(text string) bool {
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsDigit(r) {
			continue
		}
		if !unicode.IsLetter(r) && r != '_' {
			continue
		}
		if isCJK(r) {
			continue
		}
		if isASCIILetter(r) {
			return false
		}
	}
	return true
}

// isPrimarilyCJK reports whether CJK ideographs dominate the Latin letters.
// Text with no ideographs at all is never primarily CJK.
func isPrimarilyCJK(text string) bool {
	cjk := 0
	latin := 0
	for _, r := range text {
		switch {
		case isCJK(r):
			cjk++
		case isASCIILetter(r):
			latin++
		}
	}
	if cjk == 0 {
		return false
	}
	if latin == 0 {
		return true
	}
	return float64(cjk)/float64(cjk+latin) > 0.3
}
