// Package textstat provides pure, deterministic text metrics used by the
// content analyzers: tokenization, syllable estimation, Flesch reading
// ease, and keyword density.
package textstat

import (
	"math"
	"regexp"
	"strings"
)

var (
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	spaceRe     = regexp.MustCompile(`\s+`)
	sentenceRe  = regexp.MustCompile(`[.!?]+`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
	vowelRunRe  = regexp.MustCompile(`[aeiouy]+`)
	letterRe    = regexp.MustCompile(`[a-zA-Z]`)
)

// CleanHTML strips markup tags and collapses whitespace, leaving plain
// text suitable for counting.
func CleanHTML(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Sentences splits text on terminal punctuation runs and returns the
// trimmed, non-empty sentences.
func Sentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Words lowercases and whitespace-splits text, keeping only tokens that
// contain at least one letter.
func Words(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if letterRe.MatchString(f) {
			out = append(out, f)
		}
	}
	return out
}

// SyllableCount estimates the total syllables in text by counting vowel
// group runs per word, with a floor of one per word. This is an
// approximation, not a phonetic analysis.
func SyllableCount(text string) int {
	total := 0
	for _, w := range Words(text) {
		total += syllablesInWord(w)
	}
	return total
}

func syllablesInWord(w string) int {
	n := len(vowelRunRe.FindAllString(w, -1))
	if n < 1 {
		return 1
	}
	return n
}

// ParagraphCount splits text on blank-line boundaries and counts the
// non-empty blocks.
func ParagraphCount(text string) int {
	count := 0
	for _, p := range paragraphRe.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}

// FleschScore computes the Flesch reading-ease score from raw counts.
// Returns 0 when sentences or words are zero to guard the division.
func FleschScore(sentences, words, syllables int) float64 {
	if sentences == 0 || words == 0 {
		return 0
	}
	wordsPerSentence := float64(words) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(words)
	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// KeywordDensity returns the percentage of the content's words accounted
// for by case-insensitive substring occurrences of the keywords, rounded
// to one decimal. Returns 0 for an empty keyword list or empty content.
func KeywordDensity(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	wordCount := len(Words(content))
	if wordCount == 0 {
		return 0
	}

	lower := strings.ToLower(content)
	occurrences := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		occurrences += strings.Count(lower, kw)
	}

	density := float64(occurrences) / float64(wordCount) * 100
	return math.Round(density*10) / 10
}
