// Package heuristics loads the tunable extraction rules from a YAML file.
package heuristics

import (
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"seo-copilot/services/mcp-tools/internal/domain/analysis"
)

// Load reads extraction heuristics from the YAML file at path. A missing file
// is not an error: the compiled-in defaults apply, so a bare deployment works
// without any config directory. A file that exists but fails to parse is an
// error, since it means the operator's overrides would be silently ignored.
func Load(path string) (analysis.Heuristics, error) {
	defaults := analysis.DefaultHeuristics()

	// Expand environment variables in config path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("heuristics file not found, using defaults")
			return defaults, nil
		}
		return defaults, err
	}

	rules := defaults
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return defaults, err
	}

	log.Info().
		Str("path", path).
		Int("power_words", len(rules.PowerWords)).
		Msg("heuristics loaded")

	return rules, nil
}
