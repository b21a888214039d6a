// Package stdout implements a Provider that prints the composed message
// instead of sending it.
package stdout

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shineum/sendmail/internal/email"
	"github.com/shineum/sendmail/internal/message"
)

// Provider prints the envelope and the raw composed message.
type Provider struct {
	writer io.Writer
}

// NewWithWriter creates a new stdout Provider that writes to w.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send composes msg exactly as the SMTP provider would and prints it.
func (p *Provider) Send(_ context.Context, msg *email.Email) error {
	raw, err := message.Build(msg)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString(fmt.Sprintf("Envelope-From: %s\n", msg.EnvelopeFrom))
	b.WriteString(fmt.Sprintf("Envelope-To: %s\n", strings.Join(msg.Recipients(), ", ")))

	if len(msg.Attachments) > 0 {
		attachments := make([]string, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			attachments = append(attachments, fmt.Sprintf("%s (%s)", att.Filename, formatSize(len(att.Content))))
		}
		b.WriteString(fmt.Sprintf("Attachments: %s\n", strings.Join(attachments, ", ")))
	}

	b.WriteString("========================================\n")
	b.Write(raw)
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}

	if _, err := fmt.Fprint(p.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
