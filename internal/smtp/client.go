package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"

	gosmtp "github.com/emersion/go-smtp"

	"github.com/shineum/sendmail/internal/email"
	"github.com/shineum/sendmail/internal/mailerr"
	"github.com/shineum/sendmail/internal/message"
)

// DefaultPort is the implicit-TLS submission port used when the host has none.
const DefaultPort = "465"

// ProviderConfig holds the configuration for creating a Provider.
type ProviderConfig struct {
	// Host is the relay address, with or without a port.
	Host     string
	Username string
	Password string

	// TLSConfig is used for the implicit-TLS handshake. If nil, the system
	// roots and the host name are used.
	TLSConfig *tls.Config
}

// Provider sends messages through one SMTP session per call: connect,
// authenticate, submit, quit. Nothing is retried.
type Provider struct {
	addr      string
	auth      *Authenticator
	tlsConfig *tls.Config
}

// New creates a new Provider with the given configuration.
func New(cfg ProviderConfig) *Provider {
	return &Provider{
		addr:      Addr(cfg.Host),
		auth:      NewAuthenticator(cfg.Username, cfg.Password),
		tlsConfig: cfg.TLSConfig,
	}
}

// Addr appends DefaultPort to host if it does not carry a port.
func Addr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, DefaultPort)
}

// Send composes msg and submits it with envelope sender msg.EnvelopeFrom and
// envelope recipients msg.Recipients().
func (p *Provider) Send(ctx context.Context, msg *email.Email) error {
	raw, err := message.Build(msg)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return mailerr.Wrap(mailerr.TransportFailure, err, "send cancelled")
	}

	slog.Debug("connecting to smtp relay", "addr", p.addr)
	c, err := gosmtp.DialTLS(p.addr, p.tlsConfig)
	if err != nil {
		return mailerr.Wrap(mailerr.TransportFailure, err, "failed to connect to %s", p.addr)
	}
	defer c.Close()

	if err := c.Auth(p.auth.Client(c.SupportsAuth)); err != nil {
		return mailerr.Wrap(mailerr.TransportFailure, err, "failed to authenticate as %s", p.auth.username)
	}
	slog.Debug("authenticated with smtp relay", "user", p.auth.username)

	rcpts := msg.Recipients()
	if err := c.SendMail(msg.EnvelopeFrom, rcpts, bytes.NewReader(raw)); err != nil {
		return mailerr.Wrap(mailerr.TransportFailure, err, "failed to submit message")
	}

	if err := c.Quit(); err != nil {
		return mailerr.Wrap(mailerr.TransportFailure, err, "failed to close smtp session")
	}

	slog.Debug("message submitted",
		"addr", p.addr,
		"recipients", len(rcpts),
		"bytes", len(raw),
	)
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "smtp"
}
