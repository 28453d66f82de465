package notify

import (
	"crypto/tls"
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/jobs"
)

// Notifier delivers a digest of newly discovered postings.
type Notifier interface {
	Notify(postings *jobs.Postings) error
}

const (
	defaultSMTPHost = "smtp.gmail.com"
	defaultSMTPPort = 465
	mimeBoundary    = "jobscout-digest"
)

// EmailNotifier sends the digest to the user's own mailbox over implicit-TLS
// SMTP. Sender and recipient are the same address.
type EmailNotifier struct {
	host     string
	port     int
	address  string
	password string
	logger   *zap.Logger
}

func NewEmailNotifier(address, password string, logger *zap.Logger) *EmailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{
		host:     defaultSMTPHost,
		port:     defaultSMTPPort,
		address:  address,
		password: password,
		logger:   logger,
	}
}

// Notify sends one digest email covering all postings. An empty digest is a
// no-op, not an error.
func (n *EmailNotifier) Notify(postings *jobs.Postings) error {
	if postings == nil || postings.Len() == 0 {
		return nil
	}
	if n.address == "" || n.password == "" {
		return fmt.Errorf("mail credentials are not configured")
	}

	msg := BuildDigest(n.address, n.address, postings)

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.host})
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", n.address, n.password, n.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(n.address); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(n.address); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	n.logger.Info("digest email sent",
		zap.String("to", n.address),
		zap.Int("postings", postings.Len()),
	)

	return client.Quit()
}

// Subject returns the digest subject line for a posting count.
func Subject(count int) string {
	return fmt.Sprintf("%d New Data Science Leadership Jobs Found", count)
}

// BuildDigest renders the complete RFC 5322 message: headers plus a
// multipart/alternative body with plain-text and HTML renderings.
func BuildDigest(from, to string, postings *jobs.Postings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", Subject(postings.Len())))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody(postings))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody(postings))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return b.String()
}

func textBody(postings *jobs.Postings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new job posting(s):\n\n", postings.Len())
	for i, p := range postings.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
		fmt.Fprintf(&b, "   Company: %s\n", p.Company)
		fmt.Fprintf(&b, "   Location: %s\n", p.Location)
		fmt.Fprintf(&b, "   Source: %s\n", p.Source)
		fmt.Fprintf(&b, "   URL: %s\n\n", p.URL)
	}
	return b.String()
}

func htmlBody(postings *jobs.Postings) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>Found %d new job posting(s)</h2>", postings.Len())
	b.WriteString("<ul>")
	for _, p := range postings.Items {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a> at %s",
			p.URL, html.EscapeString(p.Title), html.EscapeString(p.Company))
		if p.Location != "" {
			fmt.Fprintf(&b, " (%s)", html.EscapeString(p.Location))
		}
		fmt.Fprintf(&b, " [%s]</li>", html.EscapeString(p.Source))
	}
	b.WriteString("</ul>")

	b.WriteString("<p>All links:</p><ol>")
	for _, p := range postings.Items {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>", p.URL, html.EscapeString(p.URL))
	}
	b.WriteString("</ol></body></html>")
	return b.String()
}
