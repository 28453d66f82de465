package filtering

import "strings"

// Title relevance keyword tables. The predicate requires a conjunction of a
// seniority term and a domain term, with a set of high-precision direct
// phrases as the escape hatch; a single keyword over-admits junior roles.
var (
	// hardExcludeTerms veto a title outright regardless of other signal.
	hardExcludeTerms = []string{
		"clinical", "quality assurance", "qa ", "advisory", "consulting",
		"sales", "marketing", "hr ", "human resources", "finance",
		"accounting", "legal", "compliance", "supply chain",
		"operations manager", "customer",
	}

	leadershipTerms = []string{
		"director", "vp", "vice president", "head of", "head,", "chief",
		"lead", "principal", "senior director", "executive",
	}

	domainPhrases = []string{
		"data science",
		"data scientist",
		"machine learning",
		"artificial intelligence",
		" ai ",
		" ai,",
		"ai/ml",
		"ml/ai",
		"analytics",
		"data & analytics",
		"data and analytics",
		" ml ",
		" ml,",
		"deep learning",
		"nlp",
		"natural language",
		"computer vision",
	}

	directPatterns = []string{
		"director of data science",
		"director, data science",
		"data science director",
		"vp of data science",
		"vp, data science",
		"vp data science",
		"head of data science",
		"head of machine learning",
		"head of ai",
		"head of analytics",
		"director of machine learning",
		"director of ai",
		"director of analytics",
		"ml director",
		"ai director",
		"chief data",
		"chief analytics",
		"data science lead",
		"machine learning lead",
		"ai lead",
	}
)

// RelevantTitle reports whether a job title looks like a data science / AI /
// ML leadership role. Hard exclusions win over everything else.
func RelevantTitle(title string) bool {
	lower := strings.ToLower(title)

	if containsAny(lower, hardExcludeTerms) {
		return false
	}

	if containsAny(lower, leadershipTerms) && containsAny(lower, domainPhrases) {
		return true
	}

	return containsAny(lower, directPatterns)
}

// MatchesLocation reports whether any configured location keyword appears in
// the location field or the description. Postings often state "Remote" only
// in body text.
func MatchesLocation(location, description string, keywords []string) bool {
	location = strings.ToLower(location)
	description = strings.ToLower(description)

	for _, keyword := range keywords {
		keyword = strings.ToLower(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(location, keyword) || strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}

// HasExcludedKeyword reports whether any configured exclude keyword appears
// in the title or description (contractor / hourly / temp signals).
func HasExcludedKeyword(title, description string, keywords []string) bool {
	title = strings.ToLower(title)
	description = strings.ToLower(description)

	for _, keyword := range keywords {
		keyword = strings.ToLower(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(title, keyword) || strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
