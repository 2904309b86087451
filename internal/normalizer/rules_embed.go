package normalizer

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/corrections.yaml
var correctionsYAML []byte

// CorrectionEntry is one row of the noise-correction table.
type CorrectionEntry struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// RulesConfig holds the rule data loaded from YAML.
type RulesConfig struct {
	Corrections []CorrectionEntry `yaml:"corrections"`
}

// LoadRulesConfig parses the embedded correction table.
func LoadRulesConfig() (*RulesConfig, error) {
	return ParseRulesConfig(correctionsYAML)
}

// ParseRulesConfig parses a correction table from raw YAML.
func ParseRulesConfig(data []byte) (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse correction rules: %w", err)
	}
	return config, nil
}

// compileCorrections turns the table into cleaning rules, keeping file order.
func compileCorrections(entries []CorrectionEntry) ([]Rule, error) {
	rules := make([]Rule, 0, len(entries))
	for _, e := range entries {
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("correction %q: %w", e.Name, err)
		}
		// a replacement that grows when fed back through its own rule
		// would keep the fixpoint loop in Clean from settling
		if again := re.ReplaceAllString(e.Replace, e.Replace); len(again) > len(e.Replace) {
			return nil, fmt.Errorf("correction %q: replacement %q re-matches its own pattern", e.Name, e.Replace)
		}
		rules = append(rules, Rule{Name: e.Name, Pattern: re, Replace: e.Replace})
	}
	return rules, nil
}
