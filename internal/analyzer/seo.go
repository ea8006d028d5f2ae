package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-optimizer/internal/model"
	"github.com/sells-group/content-optimizer/internal/textstat"
)

const (
	titleMinLen = 30
	titleMaxLen = 60
	metaMinLen  = 120
	metaMaxLen  = 160

	minWordCount  = 300
	minDensityPct = 1.0
	maxDensityPct = 3.0

	// keywordExcerptLen bounds how much content goes into the extraction
	// prompt.
	keywordExcerptLen = 1000
)

const keywordExtractionPrompt = `Analyze this content excerpt against the target keywords. Identify the primary keywords the content actually serves, secondary keywords, and keyword opportunities the content misses.

Target keywords: %s

Content excerpt:
%s

Respond with a valid JSON object: {"primary": ["..."], "secondary": ["..."], "missing_opportunities": ["..."]}`

// AnalyzeSEO produces an SEOReport for the input. The keyword extraction
// call degrades to a deterministic split of the target keywords on
// service failure or malformed output; only a cancelled context aborts
// the analysis.
func (a *Analyzer) AnalyzeSEO(ctx context.Context, in model.ContentInput) (*model.SEOReport, error) {
	title := analyzeTitle(in.Title, in.TargetKeywords)
	meta := analyzeMeta(in.MetaDescription, in.TargetKeywords)
	content := analyzeContent(in.Content, in.TargetKeywords)

	keywords, err := a.extractKeywords(ctx, in)
	if err != nil {
		return nil, err
	}

	report := &model.SEOReport{
		Title:    title,
		Meta:     meta,
		Content:  content,
		Keywords: keywords,
	}
	report.Score = seoScore(report)

	report.Suggestions = append(report.Suggestions, title.Suggestions...)
	report.Suggestions = append(report.Suggestions, meta.Suggestions...)
	report.Suggestions = append(report.Suggestions, content.Suggestions...)
	if len(keywords.MissingOpportunities) > 0 {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("Consider covering these keyword opportunities: %s",
				strings.Join(keywords.MissingOpportunities, ", ")))
	}

	return report, nil
}

func analyzeTitle(title string, keywords []string) model.TitleAnalysis {
	ta := model.TitleAnalysis{
		Length:      len(title),
		HasKeywords: containsAnyKeyword(title, keywords),
	}

	lengthOK := ta.Length >= titleMinLen && ta.Length <= titleMaxLen
	switch {
	case ta.Length < titleMinLen:
		ta.Suggestions = append(ta.Suggestions,
			fmt.Sprintf("Title is too short (%d chars); aim for %d-%d characters", ta.Length, titleMinLen, titleMaxLen))
	case ta.Length > titleMaxLen:
		ta.Suggestions = append(ta.Suggestions,
			fmt.Sprintf("Title is too long (%d chars); aim for %d-%d characters", ta.Length, titleMinLen, titleMaxLen))
	}
	if !ta.HasKeywords && len(keywords) > 0 {
		ta.Suggestions = append(ta.Suggestions, "Include a target keyword in the title")
	}

	if lengthOK && ta.HasKeywords {
		ta.Rating = "good"
	} else {
		ta.Rating = "fair"
	}
	return ta
}

func analyzeMeta(meta string, keywords []string) model.MetaAnalysis {
	ma := model.MetaAnalysis{
		Length:      len(meta),
		Present:     len(meta) > 0,
		HasKeywords: len(meta) > 0 && containsAnyKeyword(meta, keywords),
	}

	switch {
	case !ma.Present:
		ma.Suggestions = append(ma.Suggestions, "Add a meta description")
	case ma.Length < metaMinLen:
		ma.Suggestions = append(ma.Suggestions,
			fmt.Sprintf("Meta description is too short (%d chars); aim for %d-%d characters", ma.Length, metaMinLen, metaMaxLen))
	case ma.Length > metaMaxLen:
		ma.Suggestions = append(ma.Suggestions,
			fmt.Sprintf("Meta description is too long (%d chars); aim for %d-%d characters", ma.Length, metaMinLen, metaMaxLen))
	}
	if ma.Present && !ma.HasKeywords && len(keywords) > 0 {
		ma.Suggestions = append(ma.Suggestions, "Include a target keyword in the meta description")
	}
	return ma
}

func analyzeContent(content string, keywords []string) model.ContentAnalysis {
	facts := inspectHTML(content)
	plain := textstat.CleanHTML(content)

	ca := model.ContentAnalysis{
		WordCount:      len(textstat.Words(plain)),
		KeywordDensity: textstat.KeywordDensity(plain, keywords),
		HeadingCount:   facts.headings,
		InternalLinks:  facts.internalLinks,
		ExternalLinks:  facts.externalLinks,
	}

	if ca.WordCount < minWordCount {
		ca.Suggestions = append(ca.Suggestions,
			fmt.Sprintf("Content is under %d words (%d); longer content tends to rank better", minWordCount, ca.WordCount))
	}
	switch {
	case len(keywords) > 0 && ca.KeywordDensity < minDensityPct:
		ca.Suggestions = append(ca.Suggestions,
			fmt.Sprintf("Keyword density is low (%.1f%%); work target keywords in naturally", ca.KeywordDensity))
	case ca.KeywordDensity > maxDensityPct:
		ca.Suggestions = append(ca.Suggestions,
			fmt.Sprintf("Keyword density is high (%.1f%%); avoid keyword stuffing", ca.KeywordDensity))
	}
	if ca.HeadingCount == 0 {
		ca.Suggestions = append(ca.Suggestions, "Add headings (h1-h6) to structure the content")
	}
	if ca.InternalLinks == 0 {
		ca.Suggestions = append(ca.Suggestions, "Add internal links to related pages")
	}
	if ca.ExternalLinks == 0 {
		ca.Suggestions = append(ca.Suggestions, "Add external links to authoritative sources")
	}
	return ca
}

// seoScore sums the section contributions, capped at 100.
func seoScore(r *model.SEOReport) int {
	score := 0

	if r.Title.Rating == "good" {
		score += 30
	} else {
		score += 20
	}

	switch {
	case r.Meta.Present && r.Meta.HasKeywords:
		score += 20
	case r.Meta.Present:
		score += 10
	}

	if r.Content.WordCount >= minWordCount {
		score += 15
	}
	if r.Content.KeywordDensity >= minDensityPct && r.Content.KeywordDensity <= maxDensityPct {
		score += 15
	}
	if r.Content.HeadingCount > 0 {
		score += 10
	}
	if r.Content.InternalLinks > 0 {
		score += 5
	}
	if r.Content.ExternalLinks > 0 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// extractKeywords asks the generation service to group keywords. Any
// failure other than caller cancellation falls back to a deterministic
// split of the target keywords.
func (a *Analyzer) extractKeywords(ctx context.Context, in model.ContentInput) (model.KeywordAnalysis, error) {
	excerpt := truncateRunes(textstat.CleanHTML(in.Content), keywordExcerptLen)

	prompt := fmt.Sprintf(keywordExtractionPrompt, strings.Join(in.TargetKeywords, ", "), excerpt)
	text, err := a.ai.GenerateText(ctx, prompt, "seo analysis")
	if err != nil {
		if ctx.Err() != nil {
			return model.KeywordAnalysis{}, eris.Wrap(err, "analyzer: keyword extraction")
		}
		zap.L().Warn("analyzer: keyword extraction failed, using fallback", zap.Error(err))
		return fallbackKeywords(in.TargetKeywords), nil
	}

	var parsed struct {
		Primary              []string `json:"primary"`
		Secondary            []string `json:"secondary"`
		MissingOpportunities []string `json:"missing_opportunities"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &parsed); err != nil {
		zap.L().Warn("analyzer: keyword extraction returned malformed JSON, using fallback", zap.Error(err))
		return fallbackKeywords(in.TargetKeywords), nil
	}

	return model.KeywordAnalysis{
		Primary:              parsed.Primary,
		Secondary:            parsed.Secondary,
		MissingOpportunities: parsed.MissingOpportunities,
	}, nil
}

// fallbackKeywords deterministically splits the target keywords: first
// three primary, rest secondary, no missing opportunities.
func fallbackKeywords(keywords []string) model.KeywordAnalysis {
	ka := model.KeywordAnalysis{MissingOpportunities: []string{}}
	if len(keywords) <= 3 {
		ka.Primary = append([]string{}, keywords...)
		ka.Secondary = []string{}
		return ka
	}
	ka.Primary = append([]string{}, keywords[:3]...)
	ka.Secondary = append([]string{}, keywords[3:]...)
	return ka
}

// truncateRunes cuts s to at most n bytes without splitting a
// multi-byte rune at the boundary.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// containsAnyKeyword reports whether any keyword occurs in s,
// case-insensitively.
func containsAnyKeyword(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
