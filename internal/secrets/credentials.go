package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Credentials holds the line-delimited credential file contents: site login
// on the first two lines, notification account on the last two. Any missing
// section degrades the matching feature instead of failing the run.
type Credentials struct {
	SiteLogin    string
	SitePassword string
	MailAddress  string
	MailPassword string
}

// CanLogin reports whether the listing-site login pair is present.
func (c *Credentials) CanLogin() bool {
	return c != nil && c.SiteLogin != "" && c.SitePassword != ""
}

// CanNotify reports whether the notification account pair is present.
func (c *Credentials) CanNotify() bool {
	return c != nil && c.MailAddress != "" && c.MailPassword != ""
}

// LoadCredentials reads the plaintext credential file. A missing file or a
// file with fewer than four lines is not an error: the returned credentials
// simply report the missing capabilities as unavailable.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{}

	path = strings.TrimSpace(path)
	if path == "" {
		return creds, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return nil, fmt.Errorf("reading credentials file %q: %w", path, err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) >= 2 {
		creds.SiteLogin = strings.TrimSpace(lines[0])
		creds.SitePassword = strings.TrimSpace(lines[1])
	}
	if len(lines) >= 4 {
		creds.MailAddress = strings.TrimSpace(lines[2])
		creds.MailPassword = strings.TrimSpace(lines[3])
	}

	return creds, nil
}
