// Package request turns parsed command-line values into a ready-to-send email.
package request

import (
	"html"
	"log/slog"
	"slices"
	"strings"

	"github.com/shineum/sendmail/internal/config"
	"github.com/shineum/sendmail/internal/email"
	"github.com/shineum/sendmail/internal/mailerr"
	"github.com/shineum/sendmail/internal/message"
)

// DefaultContent is the body used when neither an argument nor stdin supplies one.
const DefaultContent = "No content"

// Request holds the mail parameters given on the command line.
type Request struct {
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	From        string
	Content     string
	Attachments []string

	// Escape converts the content to HTML-safe text with explicit line breaks.
	Escape bool
}

// Processor validates a Request and resolves it into an email.Email.
type Processor struct {
	// ReadStdin returns piped content, if any is immediately available.
	// A nil ReadStdin disables the probe.
	ReadStdin func() (string, bool)
}

// Process validates req, picks the body source, escapes it when requested and
// loads every attachment. It performs no network I/O, so any failure here
// happens before a connection is opened.
func (p *Processor) Process(req Request, mail config.MailConfig) (*email.Email, error) {
	if len(req.To) == 0 {
		return nil, mailerr.New(mailerr.EmptyRecipients, "To address can't be empty.")
	}

	from := req.From
	if from == "" {
		from = mail.User
	}

	content := req.Content
	if p.ReadStdin != nil {
		if piped, ok := p.ReadStdin(); ok {
			slog.Debug("using piped content as body", "bytes", len(piped))
			content = piped
		}
	}
	if req.Escape {
		content = Escape(content)
	}

	attachments := make([]email.Attachment, 0, len(req.Attachments))
	for _, path := range req.Attachments {
		att, err := message.LoadAttachment(path)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}

	slog.Debug("request processed",
		"to", len(req.To),
		"cc", len(req.Cc),
		"bcc", len(req.Bcc),
		"attachments", len(attachments),
		"escaped", req.Escape,
	)

	return &email.Email{
		EnvelopeFrom: mail.User,
		From:         from,
		To:           slices.Clone(req.To),
		Cc:           slices.Clone(req.Cc),
		Bcc:          slices.Clone(req.Bcc),
		Subject:      req.Subject,
		HTMLBody:     content,
		Attachments:  attachments,
		MessageID:    message.NewMessageID(mail.User),
	}, nil
}

// lineBreaks runs after HTML escaping so the inserted markup is not escaped again.
var lineBreaks = strings.NewReplacer("\n", "<br>", " ", "&nbsp;")

// Escape makes plain text safe to embed in an HTML body: reserved characters
// are escaped, newlines become <br> and spaces become &nbsp;.
func Escape(s string) string {
	return lineBreaks.Replace(html.EscapeString(s))
}
