package apply

import "strings"

// Answers holds the canned answers the field answering policy hands out.
type Answers struct {
	ManagementYears string `mapstructure:"management-years"`
	DomainYears     string `mapstructure:"domain-years"`
	Degree          string `mapstructure:"degree"`
	Arrangement     string `mapstructure:"arrangement"`
	StartDate       string `mapstructure:"start-date"`
}

// DefaultAnswers returns the built-in canned answers.
func DefaultAnswers() *Answers {
	return &Answers{
		ManagementYears: "10",
		DomainYears:     "15",
		Degree:          "Doctorate",
		Arrangement:     "Remote",
		StartDate:       "2 weeks",
	}
}

// Answer maps a question's text to a canonical answer string. The second
// return value is false when the question should be skipped. The function is
// total and deterministic: every input yields an answer or a skip, never an
// error. Compensation questions are always skipped.
func (a *Answers) Answer(question string) (string, bool) {
	if a == nil {
		a = DefaultAnswers()
	}

	q := strings.ToLower(question)

	// Work authorization.
	if strings.Contains(q, "authorized") || strings.Contains(q, "legally authorized") || strings.Contains(q, "eligib") {
		return "Yes", true
	}

	// Sponsorship.
	if strings.Contains(q, "sponsor") || strings.Contains(q, "visa") {
		return "No", true
	}

	// Relocation.
	if strings.Contains(q, "relocat") || strings.Contains(q, "willing to move") {
		return "Yes", true
	}

	// Years of experience.
	if strings.Contains(q, "years") && strings.Contains(q, "experi") {
		if strings.Contains(q, "manage") || strings.Contains(q, "lead") {
			return a.ManagementYears, true
		}
		return a.DomainYears, true
	}

	// Education.
	if strings.Contains(q, "degree") || strings.Contains(q, "education") {
		return a.Degree, true
	}

	// Work arrangement.
	if strings.Contains(q, "remote") || strings.Contains(q, "hybrid") ||
		strings.Contains(q, "on-site") || strings.Contains(q, "work arrangement") {
		return a.Arrangement, true
	}

	// Salary questions are never answered.
	if strings.Contains(q, "salary") || strings.Contains(q, "compensation") || strings.Contains(q, "pay") {
		return "", false
	}

	// Start date.
	if strings.Contains(q, "start") && strings.Contains(q, "date") {
		return a.StartDate, true
	}

	return "", false
}
