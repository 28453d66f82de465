package jobs

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// keyLength is the number of hex characters kept from the digest. Enough to
// never collide within a single user's job search.
const keyLength = 12

// query parameters that carry the site's own job reference and must survive
// canonicalization. Everything else in the query string is tracking noise.
var referenceParams = []string{"jk"}

// CanonicalURL strips tracking parameters from a posting URL so that two
// scrapes of the same posting collide to the same identity. The scheme, host
// and path are preserved; only reference-bearing query parameters survive.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	kept := url.Values{}
	q := u.Query()
	for _, param := range referenceParams {
		if v := q.Get(param); v != "" {
			kept.Set(param, v)
		}
	}

	u.RawQuery = kept.Encode()
	u.Fragment = ""

	return u.String()
}

// Reference extracts the site's own job-view identifier from a posting URL:
// the trailing path segment of a /jobs/view/ URL or the jk query parameter.
// When neither is present the canonical URL itself is the reference.
func Reference(raw string) string {
	canonical := CanonicalURL(raw)
	if canonical == "" {
		return ""
	}

	u, err := url.Parse(canonical)
	if err != nil {
		return canonical
	}

	if jk := u.Query().Get("jk"); jk != "" {
		return jk
	}

	if idx := strings.Index(u.Path, "/jobs/view/"); idx != -1 {
		id := strings.Trim(u.Path[idx+len("/jobs/view/"):], "/")
		if id != "" {
			return id
		}
	}

	return canonical
}

// Key computes the stable deduplication key for a posting from its normalized
// (source, title, company, job reference) tuple. Pure and total: empty fields
// hash as empty strings. Cosmetic description changes never affect the key.
func Key(p *Posting) string {
	if p == nil {
		return hash("")
	}

	tuple := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(p.Source)),
		strings.TrimSpace(p.Title),
		strings.TrimSpace(p.Company),
		Reference(p.URL),
	}, "|")

	return hash(tuple)
}

func hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:keyLength]
}
