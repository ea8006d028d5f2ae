package analyzer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// BrandConfig is the immutable brand lexicon the voice analyzer scores
// against. Inject a custom value to test alternate brand configurations.
type BrandConfig struct {
	TargetTone     string   `yaml:"target_tone"`
	BrandTerms     []string `yaml:"brand_terms"`
	TechnicalTerms []string `yaml:"technical_terms"`
	KeyMessages    []string `yaml:"key_messages"`
}

// DefaultBrandConfig returns the built-in lexicon.
func DefaultBrandConfig() BrandConfig {
	return BrandConfig{
		TargetTone: "professional yet approachable",
		BrandTerms: []string{
			"innovative", "reliable", "expertise", "partnership",
			"results-driven", "tailored",
		},
		TechnicalTerms: []string{
			"LMS", "SCORM", "xAPI", "microlearning", "gamification",
			"instructional design", "e-learning", "LXP",
		},
		KeyMessages: []string{
			"trusted learning partner",
			"measurable business impact",
			"engaging learning experiences",
		},
	}
}

// LoadBrandConfig reads a BrandConfig from a YAML file. Fields left empty
// in the file fall back to the default lexicon.
func LoadBrandConfig(path string) (BrandConfig, error) {
	cfg := DefaultBrandConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "analyzer: read brand config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "analyzer: parse brand config %s", path)
	}
	return cfg, nil
}
