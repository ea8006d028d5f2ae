package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-optimizer/internal/model"
	"github.com/sells-group/content-optimizer/internal/textstat"
)

const toneClassificationPrompt = `Classify the tone of the following marketing content. The target brand tone is: %s.

Content:
%s

Respond with a valid JSON object: {"detected_tone": ["..."], "formality_level": "formal|neutral|casual", "voice_characteristics": ["..."], "tone_alignment_score": <0-100>}`

// Weights of the consistency score components.
const (
	toneWeight    = 0.4
	termWeight    = 0.3
	clarityWeight = 0.3
)

// fallbackTone is the deterministic tone classification used when the
// generation service fails or returns malformed output.
var fallbackTone = model.ToneAnalysis{
	DetectedTones:   []string{"professional"},
	FormalityLevel:  "neutral",
	Characteristics: []string{"informative"},
	AlignmentScore:  75,
}

// AnalyzeBrandVoice scores how consistently the content matches the
// configured brand lexicon. One tone-classification call per invocation;
// only a cancelled context aborts the analysis.
func (a *Analyzer) AnalyzeBrandVoice(ctx context.Context, content string) (*model.BrandVoiceReport, error) {
	tone, err := a.classifyTone(ctx, content)
	if err != nil {
		return nil, err
	}

	plain := textstat.CleanHTML(content)
	sentences := textstat.Sentences(plain)
	words := textstat.Words(plain)

	style := model.StyleAnalysis{SentenceCount: len(sentences)}
	if len(sentences) > 0 {
		style.AvgSentenceLength = float64(len(words)) / float64(len(sentences))
	}

	vocab := a.analyzeVocabulary(plain)
	messaging := a.analyzeMessaging(plain)

	termUsagePct := 100.0
	if len(a.brand.BrandTerms) > 0 {
		termUsagePct = float64(len(vocab.BrandTermsUsed)) / float64(len(a.brand.BrandTerms)) * 100
	}

	report := &model.BrandVoiceReport{
		ConsistencyScore: int(math.Round(
			tone.AlignmentScore*toneWeight + termUsagePct*termWeight + messaging.ValuePropositionClarity*clarityWeight)),
		Tone:       tone,
		Style:      style,
		Vocabulary: vocab,
		Messaging:  messaging,
	}
	report.Suggestions = a.voiceSuggestions(report)
	return report, nil
}

func (a *Analyzer) classifyTone(ctx context.Context, content string) (model.ToneAnalysis, error) {
	prompt := fmt.Sprintf(toneClassificationPrompt, a.brand.TargetTone, textstat.CleanHTML(content))
	text, err := a.ai.GenerateText(ctx, prompt, "brand voice analysis")
	if err != nil {
		if ctx.Err() != nil {
			return model.ToneAnalysis{}, eris.Wrap(err, "analyzer: tone classification")
		}
		zap.L().Warn("analyzer: tone classification failed, using fallback", zap.Error(err))
		return fallbackTone, nil
	}

	var parsed struct {
		DetectedTone       []string `json:"detected_tone"`
		FormalityLevel     string   `json:"formality_level"`
		Characteristics    []string `json:"voice_characteristics"`
		ToneAlignmentScore float64  `json:"tone_alignment_score"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &parsed); err != nil {
		zap.L().Warn("analyzer: tone classification returned malformed JSON, using fallback", zap.Error(err))
		return fallbackTone, nil
	}

	tone := model.ToneAnalysis{
		DetectedTones:   parsed.DetectedTone,
		FormalityLevel:  parsed.FormalityLevel,
		Characteristics: parsed.Characteristics,
		AlignmentScore:  parsed.ToneAlignmentScore,
	}
	if len(tone.DetectedTones) == 0 {
		tone.DetectedTones = fallbackTone.DetectedTones
	}
	if tone.FormalityLevel == "" {
		tone.FormalityLevel = fallbackTone.FormalityLevel
	}
	if tone.AlignmentScore < 0 || tone.AlignmentScore > 100 {
		tone.AlignmentScore = fallbackTone.AlignmentScore
	}
	return tone, nil
}

func (a *Analyzer) analyzeVocabulary(plain string) model.VocabularyAnalysis {
	lower := strings.ToLower(plain)

	vocab := model.VocabularyAnalysis{
		BrandTermsUsed:    []string{},
		BrandTermsMissing: []string{},
	}
	for _, term := range a.brand.BrandTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			vocab.BrandTermsUsed = append(vocab.BrandTermsUsed, term)
		} else {
			vocab.BrandTermsMissing = append(vocab.BrandTermsMissing, term)
		}
	}

	jargon := 0
	for _, term := range a.brand.TechnicalTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			jargon++
		}
	}
	switch {
	case jargon > 5:
		vocab.JargonLevel = "high"
	case jargon > 2:
		vocab.JargonLevel = "medium"
	default:
		vocab.JargonLevel = "low"
	}
	return vocab
}

// analyzeMessaging checks each key message: present if the full phrase
// occurs or any of its constituent words does.
func (a *Analyzer) analyzeMessaging(plain string) model.MessagingAlignment {
	lower := strings.ToLower(plain)

	alignment := model.MessagingAlignment{
		MessagesPresent: []string{},
		MessagesMissing: []string{},
	}
	for _, msg := range a.brand.KeyMessages {
		if messagePresent(lower, msg) {
			alignment.MessagesPresent = append(alignment.MessagesPresent, msg)
		} else {
			alignment.MessagesMissing = append(alignment.MessagesMissing, msg)
		}
	}
	if len(a.brand.KeyMessages) > 0 {
		alignment.ValuePropositionClarity = float64(len(alignment.MessagesPresent)) / float64(len(a.brand.KeyMessages)) * 100
	}
	return alignment
}

func messagePresent(lowerContent, message string) bool {
	lowerMsg := strings.ToLower(message)
	if strings.Contains(lowerContent, lowerMsg) {
		return true
	}
	for _, word := range strings.Fields(lowerMsg) {
		if strings.Contains(lowerContent, word) {
			return true
		}
	}
	return false
}

func (a *Analyzer) voiceSuggestions(r *model.BrandVoiceReport) []string {
	var out []string

	if r.Tone.AlignmentScore < 70 {
		out = append(out, fmt.Sprintf("Tone drifts from the target; aim for %s", a.brand.TargetTone))
	}
	if len(r.Vocabulary.BrandTermsMissing) > 0 {
		missing := r.Vocabulary.BrandTermsMissing
		if len(missing) > 3 {
			missing = missing[:3]
		}
		out = append(out, fmt.Sprintf("Work in brand vocabulary: %s", strings.Join(missing, ", ")))
	}
	if r.Vocabulary.JargonLevel == "high" {
		out = append(out, "Technical jargon is heavy; simplify for a broader audience")
	}
	if len(r.Messaging.MessagesMissing) > 0 {
		missing := r.Messaging.MessagesMissing
		if len(missing) > 2 {
			missing = missing[:2]
		}
		out = append(out, fmt.Sprintf("Reinforce key messages: %s", strings.Join(missing, "; ")))
	}
	if r.Messaging.ValuePropositionClarity < 50 {
		out = append(out, "The value proposition is unclear; state the core benefit explicitly")
	}
	return out
}
