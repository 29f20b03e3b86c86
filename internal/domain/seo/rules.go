package seo

import "strconv"

// Finding is a rule engine result before it is persisted as a Recommendation
type Finding struct {
	Rule     string
	Severity Severity
	Summary  string
	Detail   string
}

const (
	minTitleLength = 30
	maxTitleLength = 60
	minMetaLength  = 70
	maxMetaLength  = 160
	thinWordCount  = 300
	slowLoadMillis = 3000
)

// AuditPage runs the on-page rule checks against the latest crawl data
func AuditPage(page *Page) []Finding {
	var findings []Finding

	if page.StatusCode >= 400 {
		findings = append(findings, Finding{
			Rule:     "broken-page",
			Severity: SeverityCritical,
			Summary:  "Page returns an error status",
			Detail:   "The page responded with HTTP " + strconv.Itoa(page.StatusCode) + ". Broken pages waste crawl budget and lose any rankings they held.",
		})
		// Content checks are meaningless on an error page
		return findings
	}

	if page.NoIndex {
		findings = append(findings, Finding{
			Rule:     "noindex",
			Severity: SeverityWarning,
			Summary:  "Page is excluded from indexing",
			Detail:   "A noindex directive keeps this page out of search results. Remove it if the exclusion is unintentional.",
		})
	}

	switch {
	case page.Title == "":
		findings = append(findings, Finding{
			Rule:     "missing-title",
			Severity: SeverityCritical,
			Summary:  "Page has no title tag",
		})
	case len(page.Title) < minTitleLength:
		findings = append(findings, Finding{
			Rule:     "short-title",
			Severity: SeverityWarning,
			Summary:  "Title tag is shorter than 30 characters",
		})
	case len(page.Title) > maxTitleLength:
		findings = append(findings, Finding{
			Rule:     "long-title",
			Severity: SeverityWarning,
			Summary:  "Title tag is longer than 60 characters and may be truncated in results",
		})
	}

	switch {
	case page.MetaDescription == "":
		findings = append(findings, Finding{
			Rule:     "missing-meta",
			Severity: SeverityWarning,
			Summary:  "Page has no meta description",
		})
	case len(page.MetaDescription) < minMetaLength:
		findings = append(findings, Finding{
			Rule:     "short-meta",
			Severity: SeverityInfo,
			Summary:  "Meta description is shorter than 70 characters",
		})
	case len(page.MetaDescription) > maxMetaLength:
		findings = append(findings, Finding{
			Rule:     "long-meta",
			Severity: SeverityInfo,
			Summary:  "Meta description is longer than 160 characters and may be truncated",
		})
	}

	if page.H1 == "" {
		findings = append(findings, Finding{
			Rule:     "missing-h1",
			Severity: SeverityWarning,
			Summary:  "Page has no H1 heading",
		})
	}

	if page.WordCount > 0 && page.WordCount < thinWordCount {
		findings = append(findings, Finding{
			Rule:     "thin-content",
			Severity: SeverityInfo,
			Summary:  "Page has fewer than 300 words of content",
		})
	}

	if page.LoadMillis > slowLoadMillis {
		findings = append(findings, Finding{
			Rule:     "slow-page",
			Severity: SeverityWarning,
			Summary:  "Page took longer than 3 seconds to load",
		})
	}

	if page.Canonical != "" && page.Canonical != page.Path {
		findings = append(findings, Finding{
			Rule:     "canonical-mismatch",
			Severity: SeverityInfo,
			Summary:  "Canonical URL points away from this page",
			Detail:   "The canonical tag references " + page.Canonical + ". Rankings consolidate on the canonical target.",
		})
	}

	return findings
}
