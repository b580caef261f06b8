package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RenderReport formats one analysis outcome as a compact markdown summary for
// hosts that display tool output as text. Rendering is deterministic for a
// fixed (request, result) pair.
func RenderReport(req Request, res *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Title analysis for %q\n\n", req.Query)
	fmt.Fprintf(&b, "Current title (%d chars): %s\n", utf8.RuneCountInString(req.CurrentTitle), req.CurrentTitle)

	feats := res.FeaturesUsed
	if feats.TotalResults == 0 {
		b.WriteString("\nNo competing results were found for this query.\n")
	} else {
		fmt.Fprintf(&b, "\nAnalyzed %d competing results: avg title length %.1f chars, query coverage %.2f, %d duplicate titles.\n",
			feats.TotalResults, feats.AvgCompetitorTitleLength, feats.KeywordCoverageRatio, feats.DuplicateTitleCount)
	}
	if feats.UserDomainPosition > 0 {
		fmt.Fprintf(&b, "Your domain currently ranks at position %d.\n", feats.UserDomainPosition)
	}

	b.WriteString("\n### Suggested listings\n\n")
	writeSuggestion(&b, 1, res.SuggestedTitle, res.SuggestedDescription, res.Rationale)
	for idx, alt := range res.Alternatives {
		writeSuggestion(&b, idx+2, alt.Title, alt.Description, alt.Rationale)
	}

	fmt.Fprintf(&b, "\nConfidence: %.2f\n", res.Confidence)

	return b.String()
}

func writeSuggestion(b *strings.Builder, rank int, title, description, rationale string) {
	fmt.Fprintf(b, "%d. **%s** (%d chars)\n", rank, title, utf8.RuneCountInString(title))
	if description != "" {
		fmt.Fprintf(b, "   %s\n", description)
	}
	if rationale != "" {
		fmt.Fprintf(b, "   _%s_\n", rationale)
	}
}
