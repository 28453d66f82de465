package apply

import "strings"

// Profile is the applicant profile passed into the flow controller at
// construction time. There is no ambient profile state anywhere else.
type Profile struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Phone    string `mapstructure:"phone"`
	Link     string `mapstructure:"link"`
	Location string `mapstructure:"location"`
	Headline string `mapstructure:"headline"`
	Summary  string `mapstructure:"summary"`

	Answers *Answers `mapstructure:"answers"`
}

// FieldValue maps a recognized form-field name (label, placeholder or name
// attribute, already lowercased by the caller or not) to the profile value
// for it. Unrecognized fields yield "" and are left alone.
func (p *Profile) FieldValue(fieldName string) string {
	if p == nil {
		return ""
	}

	field := strings.ToLower(fieldName)

	switch {
	case strings.Contains(field, "email"):
		return p.Email
	case strings.Contains(field, "phone") || strings.Contains(field, "mobile"):
		return p.Phone
	case strings.Contains(field, "linkedin"):
		return p.Link
	case strings.Contains(field, "city") || strings.Contains(field, "location"):
		return p.Location
	case strings.Contains(field, "name") && strings.Contains(field, "first"):
		return firstToken(p.Name)
	case strings.Contains(field, "name") && strings.Contains(field, "last"):
		return lastToken(p.Name)
	default:
		return ""
	}
}

func firstToken(s string) string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func lastToken(s string) string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
