package model

// ContentInput is one piece of content submitted for analysis. Immutable
// per call; Content may carry HTML markup.
type ContentInput struct {
	Content         string   `json:"content"`
	Title           string   `json:"title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	TargetKeywords  []string `json:"target_keywords"`
}

// TitleAnalysis reports on the title element of a piece of content.
type TitleAnalysis struct {
	Length      int      `json:"length"`
	HasKeywords bool     `json:"has_keywords"`
	Rating      string   `json:"rating"` // "good" or "fair"
	Suggestions []string `json:"suggestions"`
}

// MetaAnalysis reports on the meta description.
type MetaAnalysis struct {
	Length      int      `json:"length"`
	Present     bool     `json:"present"`
	HasKeywords bool     `json:"has_keywords"`
	Suggestions []string `json:"suggestions"`
}

// ContentAnalysis reports on the body content.
type ContentAnalysis struct {
	WordCount      int      `json:"word_count"`
	KeywordDensity float64  `json:"keyword_density"`
	HeadingCount   int      `json:"heading_count"`
	InternalLinks  int      `json:"internal_links"`
	ExternalLinks  int      `json:"external_links"`
	Suggestions    []string `json:"suggestions"`
}

// KeywordAnalysis groups extracted keywords by role.
type KeywordAnalysis struct {
	Primary              []string `json:"primary"`
	Secondary            []string `json:"secondary"`
	MissingOpportunities []string `json:"missing_opportunities"`
}

// SEOReport is the full result of an SEO analysis. Produced fresh on
// each call, never persisted.
type SEOReport struct {
	Score       int             `json:"score"`
	Title       TitleAnalysis   `json:"title_analysis"`
	Meta        MetaAnalysis    `json:"meta_analysis"`
	Content     ContentAnalysis `json:"content_analysis"`
	Keywords    KeywordAnalysis `json:"keywords"`
	Suggestions []string        `json:"suggestions"`
}

// SentenceStats summarizes sentence-level readability metrics.
type SentenceStats struct {
	Count    int     `json:"count"`
	AvgWords float64 `json:"avg_words"`
	// Sentences longer than 20 words.
	LongCount int `json:"long_count"`
}

// WordStats summarizes word-level readability metrics. PassivePct is a
// heuristic based on a fixed auxiliary-verb list, not true passive-voice
// detection.
type WordStats struct {
	Count        int     `json:"count"`
	AvgLength    float64 `json:"avg_length"`
	ComplexCount int     `json:"complex_count"`
	PassivePct   float64 `json:"passive_pct"`
}

// StructureStats summarizes document structure.
type StructureStats struct {
	Paragraphs           int     `json:"paragraphs"`
	AvgWordsPerParagraph float64 `json:"avg_words_per_paragraph"`
	Headings             int     `json:"headings"`
	Bullets              int     `json:"bullets"`
	ListTags             int     `json:"list_tags"`
}

// ReadabilityReport is the full result of a readability analysis.
type ReadabilityReport struct {
	Score       int            `json:"score"`
	GradeLevel  string         `json:"grade_level"`
	ReadingTime string         `json:"reading_time"`
	Sentences   SentenceStats  `json:"sentence_stats"`
	Words       WordStats      `json:"word_stats"`
	Structure   StructureStats `json:"structure_stats"`
	Suggestions []string       `json:"suggestions"`
}

// ToneAnalysis holds the tone classification for a piece of content.
type ToneAnalysis struct {
	DetectedTones   []string `json:"detected_tones"`
	FormalityLevel  string   `json:"formality_level"`
	Characteristics []string `json:"voice_characteristics"`
	AlignmentScore  float64  `json:"tone_alignment_score"`
}

// StyleAnalysis holds coarse style metrics used by the brand-voice report.
type StyleAnalysis struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	SentenceCount     int     `json:"sentence_count"`
}

// VocabularyAnalysis reports brand-term usage and jargon level.
type VocabularyAnalysis struct {
	BrandTermsUsed    []string `json:"brand_terms_used"`
	BrandTermsMissing []string `json:"brand_terms_missing"`
	JargonLevel       string   `json:"jargon_level"` // low, medium, high
}

// MessagingAlignment reports key-message coverage.
type MessagingAlignment struct {
	MessagesPresent         []string `json:"messages_present"`
	MessagesMissing         []string `json:"messages_missing"`
	ValuePropositionClarity float64  `json:"value_proposition_clarity"`
}

// BrandVoiceReport is the full result of a brand-voice analysis.
type BrandVoiceReport struct {
	ConsistencyScore int                `json:"consistency_score"`
	Tone             ToneAnalysis       `json:"tone_analysis"`
	Style            StyleAnalysis      `json:"style_analysis"`
	Vocabulary       VocabularyAnalysis `json:"vocabulary_analysis"`
	Messaging        MessagingAlignment `json:"messaging_alignment"`
	Suggestions      []string           `json:"suggestions"`
}

// ContentReport bundles the three independent analyses of one input.
type ContentReport struct {
	SEO         *SEOReport         `json:"seo"`
	Readability *ReadabilityReport `json:"readability"`
	BrandVoice  *BrandVoiceReport  `json:"brand_voice"`
}
