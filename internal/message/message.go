// Package message composes RFC 5322 multipart messages from an email.Email.
package message

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/shineum/sendmail/internal/email"
	"github.com/shineum/sendmail/internal/mailerr"
)

const (
	// BodyContentType is used for the body regardless of escaping.
	BodyContentType = "text/html"

	// AttachmentContentType is used for every attached file.
	AttachmentContentType = "application/octet-stream"
)

// LoadAttachment reads the file at path into memory. The path must exist and
// be a regular file.
func LoadAttachment(path string) (email.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return email.Attachment{}, mailerr.New(mailerr.AttachmentNotFound, "No such file %s", path)
		}
		return email.Attachment{}, mailerr.Wrap(mailerr.AttachmentNotFound, err, "failed to stat attachment %s", path)
	}
	if !info.Mode().IsRegular() {
		return email.Attachment{}, mailerr.New(mailerr.AttachmentNotRegularFile, "%s is not a file", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return email.Attachment{}, mailerr.Wrap(mailerr.AttachmentNotFound, err, "failed to read attachment %s", path)
	}

	return email.Attachment{
		Filename:    filepath.Base(path),
		ContentType: AttachmentContentType,
		Content:     content,
	}, nil
}

// NewMessageID returns a random Message-ID (without angle brackets) whose
// right-hand side is the domain of addr, or "localhost" if addr has none.
func NewMessageID(addr string) string {
	domain := "localhost"
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		domain = strings.TrimRight(addr[i+1:], ">")
	}
	return uuid.NewString() + "@" + domain
}

// Build composes msg into a multipart/mixed message. Bcc recipients never
// appear in the headers.
func Build(msg *email.Email) ([]byte, error) {
	var h mail.Header
	h.Set("MIME-Version", "1.0")
	h.SetDate(time.Now())

	id := msg.MessageID
	if id == "" {
		id = NewMessageID(msg.EnvelopeFrom)
	}
	h.SetMessageID(id)

	h.SetSubject(msg.Subject)
	h.Set("From", formatAddressList([]string{msg.From}))
	h.Set("To", formatAddressList(msg.To))
	if len(msg.Cc) > 0 {
		h.Set("Cc", formatAddressList(msg.Cc))
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}

	var bodyHeader mail.InlineHeader
	bodyHeader.SetContentType(BodyContentType, map[string]string{"charset": "utf-8"})
	bw, err := mw.CreateSingleInline(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := bw.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, fmt.Errorf("failed to write body part: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close body part: %w", err)
	}

	for _, att := range msg.Attachments {
		if err := writeAttachment(mw, att); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}

	return buf.Bytes(), nil
}

// formatAddressList joins entries with ", " in input order. Entries with
// non-ASCII display names are RFC 2047 encoded; ASCII entries and entries that
// do not parse as a single address are written as given.
func formatAddressList(entries []string) string {
	formatted := make([]string, 0, len(entries))
	for _, entry := range entries {
		formatted = append(formatted, formatAddress(entry))
	}
	return strings.Join(formatted, ", ")
}

func formatAddress(entry string) string {
	if isASCII(entry) {
		return entry
	}
	addr, err := mail.ParseAddress(entry)
	if err != nil {
		return entry
	}
	return addr.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func writeAttachment(mw *mail.Writer, att email.Attachment) error {
	contentType := att.ContentType
	if contentType == "" {
		contentType = AttachmentContentType
	}

	var ah mail.AttachmentHeader
	ah.SetContentType(contentType, nil)
	ah.SetFilename(att.Filename)

	w, err := mw.CreateAttachment(ah)
	if err != nil {
		return fmt.Errorf("failed to create attachment part %s: %w", att.Filename, err)
	}
	if _, err := w.Write(att.Content); err != nil {
		return fmt.Errorf("failed to write attachment part %s: %w", att.Filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close attachment part %s: %w", att.Filename, err)
	}
	return nil
}
