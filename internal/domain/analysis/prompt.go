package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const systemPrompt = "You are an expert SEO assistant specializing in search listing titles and meta descriptions. Base every recommendation on the competitive data provided."

const (
	fallbackMaxTitleLength       = 65
	fallbackMaxDescriptionLength = 160
	minTitleLength               = 50
	minDescriptionLength         = 120
)

// BuildPrompt deterministically renders the model payload for one analysis.
// Identical (request, features) pairs produce byte-identical prompts. The
// rendered size never exceeds rules.PromptMaxChars: competitor rows are
// dropped first, then people-also-ask lines; the summary statistics and the
// output schema are always kept.
func BuildPrompt(req Request, feats CompetitiveFeatures, rules Heuristics) Prompt {
	rules = rules.withDefaults()

	maxTitle := fallbackMaxTitleLength
	if req.Options.MaxTitleLength != nil && *req.Options.MaxTitleLength > 0 {
		maxTitle = *req.Options.MaxTitleLength
	}
	maxDescription := fallbackMaxDescriptionLength
	if req.Options.MaxDescriptionLength != nil && *req.Options.MaxDescriptionLength > 0 {
		maxDescription = *req.Options.MaxDescriptionLength
	}
	minTitle := minTitleLength
	if minTitle > maxTitle {
		minTitle = maxTitle
	}
	minDescription := minDescriptionLength
	if minDescription > maxDescription {
		minDescription = maxDescription
	}

	var header strings.Builder
	header.WriteString("Rewrite this page's search listing so it can outrank the current results.\n\n")
	fmt.Fprintf(&header, "Search query: %q\n", req.Query)
	fmt.Fprintf(&header, "Current title: %q", req.CurrentTitle)
	if strings.TrimSpace(req.CurrentDescription) != "" {
		fmt.Fprintf(&header, "\nCurrent description: %q", req.CurrentDescription)
	}

	signals := renderSignals(feats)

	var schema strings.Builder
	schema.WriteString("Respond with ONLY a JSON object inside a ```json fence, shaped exactly like:\n")
	schema.WriteString("```json\n")
	schema.WriteString("{\n")
	schema.WriteString("  \"suggestions\": [\n")
	schema.WriteString("    {\"title\": \"string\", \"description\": \"string\", \"rationale\": \"string\"}\n")
	schema.WriteString("  ],\n")
	schema.WriteString("  \"confidence\": 0.0\n")
	schema.WriteString("}\n")
	schema.WriteString("```\n")
	fmt.Fprintf(&schema, "Provide exactly %d suggestions ranked best first. ", rules.SuggestionCount)
	fmt.Fprintf(&schema, "Titles must be %d-%d characters and descriptions %d-%d characters. ", minTitle, maxTitle, minDescription, maxDescription)
	schema.WriteString("Work the search query into every title naturally. Set confidence to your 0-1 estimate that the top suggestion beats the current title.")

	budget := rules.PromptMaxChars - len(systemPrompt)
	used := len(header.String()) + len(signals) + len(schema.String()) + 2*3

	paaLines := make([]string, 0, len(feats.PeopleAlsoAsk))
	for _, question := range feats.PeopleAlsoAsk {
		paaLines = append(paaLines, "- "+question)
	}
	paaBlock := buildBlock("Searchers also ask:", paaLines, budget-used-2)
	if paaBlock != "" {
		used += len(paaBlock) + 2
	}

	rowLines := make([]string, 0, len(feats.CompetitorSample))
	for _, row := range feats.CompetitorSample {
		line := fmt.Sprintf("%d. %s", row.Position, row.Title)
		if row.Snippet != "" {
			line += "\n   " + row.Snippet
		}
		rowLines = append(rowLines, line)
	}
	rowsBlock := buildBlock("Top results for the query:", rowLines, budget-used-2)

	parts := []string{header.String(), signals}
	if paaBlock != "" {
		parts = append(parts, paaBlock)
	}
	if rowsBlock != "" {
		parts = append(parts, rowsBlock)
	}
	parts = append(parts, schema.String())

	user := strings.Join(parts, "\n\n")
	if budget > 0 && len(user) > budget {
		user = user[:budget]
		for len(user) > 0 && !utf8.ValidString(user) {
			user = user[:len(user)-1]
		}
	}

	return Prompt{System: systemPrompt, User: user}
}

// StrictRetry returns the corrective follow-up prompt sent after an
// unparsable model reply.
func (p Prompt) StrictRetry() Prompt {
	return Prompt{
		System: p.System,
		User:   p.User + "\n\nYour previous reply was not valid JSON. Reply again with ONLY the JSON object in the exact shape above, with no prose before or after it.",
	}
}

// renderSignals writes the summary statistics block in a fixed order.
func renderSignals(feats CompetitiveFeatures) string {
	var b strings.Builder
	b.WriteString("Competitive signals from the analyzed results:")

	if feats.TotalResults == 0 {
		b.WriteString("\n- results analyzed: 0 (no existing competition for this query)")
	} else {
		fmt.Fprintf(&b, "\n- results analyzed: %d", feats.TotalResults)
		fmt.Fprintf(&b, "\n- average competitor title length: %.1f characters (min %d, max %d)",
			feats.AvgCompetitorTitleLength, feats.TitleLengthRange.Min, feats.TitleLengthRange.Max)
		fmt.Fprintf(&b, "\n- share of results using the query: %.2f", feats.KeywordCoverageRatio)
		fmt.Fprintf(&b, "\n- duplicate competitor titles: %d", feats.DuplicateTitleCount)
		fmt.Fprintf(&b, "\n- titles mentioning a year: %d", feats.TitlesWithYear)
		fmt.Fprintf(&b, "\n- titles using numbers: %d", feats.TitlesWithNumbers)
		fmt.Fprintf(&b, "\n- separator styles: %d pipe, %d dash", feats.SeparatorUsage.Pipe, feats.SeparatorUsage.Dash)
		if len(feats.TopPositionsWithKeyword) > 0 {
			fmt.Fprintf(&b, "\n- positions whose listing uses the query: %s", joinInts(feats.TopPositionsWithKeyword))
		}
		if len(feats.PowerWordUsage) > 0 {
			pairs := make([]string, 0, len(feats.PowerWordUsage))
			for _, usage := range feats.PowerWordUsage {
				pairs = append(pairs, fmt.Sprintf("%s=%d", usage.Word, usage.Count))
			}
			fmt.Fprintf(&b, "\n- power words seen in titles: %s", strings.Join(pairs, ", "))
		}
	}

	if feats.KeywordInCurrentTitle {
		b.WriteString("\n- the current title already contains the query")
	} else {
		b.WriteString("\n- the current title does NOT contain the query")
	}
	if feats.UserDomainPosition > 0 {
		fmt.Fprintf(&b, "\n- the caller's own domain ranks at position %d", feats.UserDomainPosition)
	}

	return b.String()
}

// buildBlock joins intro and lines while staying inside budget; lines past
// the budget are dropped from the end. An empty block is returned when not
// even the first line fits.
func buildBlock(intro string, lines []string, budget int) string {
	if len(lines) == 0 || budget <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(intro)
	added := 0
	for _, line := range lines {
		if b.Len()+1+len(line) > budget {
			break
		}
		b.WriteString("\n")
		b.WriteString(line)
		added++
	}
	if added == 0 {
		return ""
	}
	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	return strings.Join(parts, ", ")
}
