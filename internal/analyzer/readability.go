package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/content-optimizer/internal/model"
	"github.com/sells-group/content-optimizer/internal/textstat"
)

const (
	longSentenceWords = 20
	complexWordChars  = 6
	wordsPerMinute    = 200
)

// passiveAuxiliaries is the fixed auxiliary-verb list used for the
// passive-voice percentage. A heuristic, not true passive detection.
var passiveAuxiliaries = map[string]bool{
	"was": true, "were": true, "been": true, "being": true,
	"is": true, "are": true, "am": true,
}

// AnalyzeReadability produces a ReadabilityReport. Fully local and
// deterministic; degenerate input yields zeroed stats, never an error.
func AnalyzeReadability(content string) *model.ReadabilityReport {
	plain := textstat.CleanHTML(content)
	sentences := textstat.Sentences(plain)
	words := textstat.Words(plain)
	syllables := textstat.SyllableCount(plain)
	facts := inspectHTML(content)

	flesch := textstat.FleschScore(len(sentences), len(words), syllables)

	report := &model.ReadabilityReport{
		Score:       clampScore(flesch),
		GradeLevel:  gradeLevel(flesch),
		ReadingTime: readingTime(len(words)),
		Sentences:   sentenceStats(sentences),
		Words:       wordStats(words),
		Structure:   structureStats(content, len(words), facts),
	}
	report.Suggestions = readabilitySuggestions(flesch, report)
	return report
}

func sentenceStats(sentences []string) model.SentenceStats {
	stats := model.SentenceStats{Count: len(sentences)}
	if len(sentences) == 0 {
		return stats
	}

	total := 0
	for _, s := range sentences {
		n := len(textstat.Words(s))
		total += n
		if n > longSentenceWords {
			stats.LongCount++
		}
	}
	stats.AvgWords = float64(total) / float64(len(sentences))
	return stats
}

func wordStats(words []string) model.WordStats {
	stats := model.WordStats{Count: len(words)}
	if len(words) == 0 {
		return stats
	}

	totalLen := 0
	passive := 0
	for _, w := range words {
		totalLen += len(w)
		if len(w) > complexWordChars {
			stats.ComplexCount++
		}
		if passiveAuxiliaries[w] {
			passive++
		}
	}
	stats.AvgLength = float64(totalLen) / float64(len(words))
	stats.PassivePct = float64(passive) / float64(len(words)) * 100
	return stats
}

func structureStats(content string, wordCount int, facts htmlFacts) model.StructureStats {
	stats := model.StructureStats{
		Paragraphs: textstat.ParagraphCount(content),
		Headings:   facts.headings,
		ListTags:   facts.listTags,
	}
	if stats.Paragraphs > 0 {
		stats.AvgWordsPerParagraph = float64(wordCount) / float64(stats.Paragraphs)
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "•") {
			stats.Bullets++
		}
	}
	return stats
}

func readabilitySuggestions(flesch float64, r *model.ReadabilityReport) []string {
	var out []string

	if flesch < 60 {
		out = append(out, "Content is too difficult for a general audience; shorten sentences and prefer simpler words")
	}
	if r.Sentences.AvgWords > longSentenceWords {
		out = append(out, "Average sentence length is high; break up long sentences")
	}
	if r.Sentences.LongCount > 0 {
		out = append(out, fmt.Sprintf("%d sentences exceed %d words", r.Sentences.LongCount, longSentenceWords))
	}
	if r.Words.PassivePct > 10 {
		out = append(out, "Reduce passive voice; prefer active constructions")
	}
	if r.Structure.AvgWordsPerParagraph > 100 {
		out = append(out, "Paragraphs are long; break content into smaller chunks")
	}
	if r.Structure.Headings == 0 {
		out = append(out, "Add headings to help readers scan")
	}
	if r.Structure.Bullets == 0 && r.Structure.ListTags == 0 {
		out = append(out, "Consider bullet points or lists for dense material")
	}
	return out
}

// gradeLevel maps a Flesch score onto US grade-level bands.
func gradeLevel(flesch float64) string {
	switch {
	case flesch >= 90:
		return "5th grade"
	case flesch >= 80:
		return "6th grade"
	case flesch >= 70:
		return "7th grade"
	case flesch >= 60:
		return "8th-9th grade"
	case flesch >= 50:
		return "10th-12th grade"
	case flesch >= 30:
		return "College level"
	default:
		return "Graduate level"
	}
}

func readingTime(wordCount int) string {
	minutes := int(math.Ceil(float64(wordCount) / wordsPerMinute))
	return fmt.Sprintf("%d min read", minutes)
}

// clampScore rounds a raw Flesch value into the report's [0,100] range.
func clampScore(flesch float64) int {
	score := int(math.Round(flesch))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
