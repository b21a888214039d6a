// Package provider defines the interface for the final step of a sendmail run.
package provider

import (
	"context"

	"github.com/shineum/sendmail/internal/email"
)

// Provider is the interface that the pipeline hands a processed message to.
// The SMTP provider delivers it; the stdout provider previews it for --dry-run.
type Provider interface {
	// Send composes and delivers an email message through this provider.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, msg *email.Email) error

	// Name returns the human-readable name of this provider.
	Name() string
}
