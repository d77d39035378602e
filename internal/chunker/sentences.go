package chunker

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s|$)`)
)

// abbreviations that end with a period mid-sentence and must not close one
var abbreviations = map[string]struct{}{
	"dr":   {},
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"prof": {},
	"vs":   {},
	"e.g":  {},
	"i.e":  {},
	"fig":  {},
	"et":   {},
	"al":   {},
}

// splitSentences normalizes whitespace and splits text on terminal
// punctuation. Terminators that follow a known abbreviation or a single
// initial ("J.") do not end the sentence. Trailing text without a terminator
// is returned as a final sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		if continuesSentence(text[start:loc[0]]) {
			continue
		}
		sentence := strings.TrimSpace(text[start:loc[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// continuesSentence reports whether the text before a terminator ends in a
// token that makes the terminator part of an abbreviation rather than the
// end of a sentence.
func continuesSentence(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], "(\"'"))
	if _, ok := abbreviations[last]; ok {
		return true
	}
	// single-letter initials like "J." in names
	if len(last) == 1 && last >= "a" && last <= "z" {
		return true
	}
	return false
}
