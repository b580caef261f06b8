package analysis

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"seo-copilot/services/mcp-tools/internal/domain/serp"
)

var (
	yearPattern  = regexp.MustCompile(`\b20\d{2}\b`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// Heuristics tunes feature extraction and prompt sizing. Zero-valued fields
// fall back to the compiled-in defaults, so a partially-filled heuristics
// file never breaks extraction.
type Heuristics struct {
	PowerWords         []string `yaml:"power_words"`
	TopPositionsLimit  int      `yaml:"top_positions_limit"`
	PeopleAlsoAskLimit int      `yaml:"people_also_ask_limit"`
	SnippetMaxLength   int      `yaml:"snippet_max_length"`
	PromptMaxChars     int      `yaml:"prompt_max_chars"`
	SuggestionCount    int      `yaml:"suggestion_count"`
}

// DefaultHeuristics returns the tuning used when no heuristics file is
// configured.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		PowerWords:         []string{"best", "complete", "essential", "guide", "proven", "review", "top", "ultimate"},
		TopPositionsLimit:  10,
		PeopleAlsoAskLimit: 5,
		SnippetMaxLength:   160,
		PromptMaxChars:     6000,
		SuggestionCount:    5,
	}
}

func (h Heuristics) withDefaults() Heuristics {
	def := DefaultHeuristics()
	if len(h.PowerWords) == 0 {
		h.PowerWords = def.PowerWords
	}
	if h.TopPositionsLimit <= 0 {
		h.TopPositionsLimit = def.TopPositionsLimit
	}
	if h.PeopleAlsoAskLimit <= 0 {
		h.PeopleAlsoAskLimit = def.PeopleAlsoAskLimit
	}
	if h.SnippetMaxLength <= 0 {
		h.SnippetMaxLength = def.SnippetMaxLength
	}
	if h.PromptMaxChars <= 0 {
		h.PromptMaxChars = def.PromptMaxChars
	}
	if h.SuggestionCount <= 0 {
		h.SuggestionCount = def.SuggestionCount
	}
	return h
}

// ExtractFeatures derives the competitive signals for one SERP response.
// Pure and total: an empty (or nil) response yields fully-defined zeroed
// features, never an error. Entries on the caller's own domain are excluded
// from competitor statistics when userDomain is set.
func ExtractFeatures(resp *serp.Response, currentTitle, targetKeyword, userDomain string, rules Heuristics) CompetitiveFeatures {
	rules = rules.withDefaults()

	keyword := strings.ToLower(strings.TrimSpace(targetKeyword))
	features := CompetitiveFeatures{
		KeywordInCurrentTitle:   keyword != "" && strings.Contains(strings.ToLower(currentTitle), keyword),
		TopPositionsWithKeyword: []int{},
	}

	if resp == nil || len(resp.Entries) == 0 {
		return features
	}

	features.PeopleAlsoAsk = capQuestions(resp.PeopleAlsoAsk, rules.PeopleAlsoAskLimit)

	var keywordRe *regexp.Regexp
	if keyword != "" {
		keywordRe = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	}

	ownDomain := normalizeDomain(userDomain)
	titleCounts := make(map[string]int)
	powerCounts := make(map[string]int)

	var (
		competitors int
		totalLength int
		matched     int
		positions   []int
	)

	for _, entry := range resp.Entries {
		if ownDomain != "" && hostDomain(entry.URL) == ownDomain {
			if features.UserDomainPosition == 0 {
				features.UserDomainPosition = entry.Position
			}
			continue
		}

		competitors++

		length := utf8.RuneCountInString(entry.Title)
		totalLength += length
		if features.TitleLengthRange.Min == 0 || length < features.TitleLengthRange.Min {
			features.TitleLengthRange.Min = length
		}
		if length > features.TitleLengthRange.Max {
			features.TitleLengthRange.Max = length
		}

		titleCounts[strings.ToLower(strings.TrimSpace(entry.Title))]++

		if keywordRe != nil && (keywordRe.MatchString(entry.Title) || keywordRe.MatchString(entry.Snippet)) {
			matched++
			positions = append(positions, entry.Position)
		}

		if yearPattern.MatchString(entry.Title) {
			features.TitlesWithYear++
		}
		if digitPattern.MatchString(entry.Title) {
			features.TitlesWithNumbers++
		}
		if strings.Contains(entry.Title, "|") {
			features.SeparatorUsage.Pipe++
		}
		if strings.Contains(entry.Title, " - ") {
			features.SeparatorUsage.Dash++
		}

		lowerTitle := strings.ToLower(entry.Title)
		for _, word := range rules.PowerWords {
			if word = strings.ToLower(strings.TrimSpace(word)); word != "" && strings.Contains(lowerTitle, word) {
				powerCounts[word]++
			}
		}

		features.CompetitorSample = append(features.CompetitorSample, CompetitorRow{
			Position: entry.Position,
			Title:    entry.Title,
			Snippet:  truncateRunes(entry.Snippet, rules.SnippetMaxLength),
		})
	}

	features.TotalResults = competitors
	if competitors > 0 {
		features.AvgCompetitorTitleLength = float64(totalLength) / float64(competitors)
		features.KeywordCoverageRatio = float64(matched) / float64(competitors)
	}

	for _, count := range titleCounts {
		if count > 1 {
			features.DuplicateTitleCount += count - 1
		}
	}

	if len(positions) > 0 {
		sort.Ints(positions)
		if len(positions) > rules.TopPositionsLimit {
			positions = positions[:rules.TopPositionsLimit]
		}
		features.TopPositionsWithKeyword = positions
	}

	if len(powerCounts) > 0 {
		words := make([]string, 0, len(powerCounts))
		for word := range powerCounts {
			words = append(words, word)
		}
		sort.Strings(words)
		features.PowerWordUsage = make([]PowerWordCount, 0, len(words))
		for _, word := range words {
			features.PowerWordUsage = append(features.PowerWordUsage, PowerWordCount{Word: word, Count: powerCounts[word]})
		}
	}

	return features
}

// truncateRunes hard-caps s at max characters. No ellipsis is added so the
// result always satisfies the cap it was truncated for.
func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}

// capQuestions copies at most limit questions so the features stay
// self-contained after the SERP response is discarded.
func capQuestions(questions []string, limit int) []string {
	if len(questions) == 0 {
		return nil
	}
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	return append([]string(nil), questions...)
}

// hostDomain extracts the host of a result URL without the www. prefix.
func hostDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	host := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	} else if idx := strings.Index(host, "/"); idx >= 0 {
		host = host[:idx]
	}
	host = strings.ToLower(host)
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}

// normalizeDomain canonicalizes a caller-supplied domain for comparison with
// result hosts.
func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	if strings.Contains(domain, "://") {
		if parsed, err := url.Parse(domain); err == nil && parsed.Host != "" {
			domain = parsed.Host
		}
	}
	if idx := strings.Index(domain, "/"); idx >= 0 {
		domain = domain[:idx]
	}
	return strings.TrimPrefix(domain, "www.")
}
