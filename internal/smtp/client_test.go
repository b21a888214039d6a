package smtp

import (
	"bytes"
	"context"
	"net"
	"slices"
	"strings"
	"testing"

	"github.com/shineum/sendmail/internal/email"
	"github.com/shineum/sendmail/internal/mailerr"
	"github.com/shineum/sendmail/internal/testutil"
)

func testEmail() *email.Email {
	return &email.Email{
		EnvelopeFrom: "robot@example.com",
		From:         "Reports <reports@example.com>",
		To:           []string{"alice@example.com", "bob@example.com"},
		Cc:           []string{"carol@example.com"},
		Bcc:          []string{"addr@example.com"},
		Subject:      "Relay test",
		HTMLBody:     "hello&nbsp;relay",
	}
}

func TestAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{host: "smtp.example.com", want: "smtp.example.com:465"},
		{host: "smtp.example.com:2465", want: "smtp.example.com:2465"},
		{host: "127.0.0.1:1465", want: "127.0.0.1:1465"},
		{host: "::1", want: "[::1]:465"},
	}

	for _, tt := range tests {
		if got := Addr(tt.host); got != tt.want {
			t.Errorf("Addr(%q): got %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	p := New(ProviderConfig{Host: "smtp.example.com"})
	if got := p.Name(); got != "smtp" {
		t.Errorf("Name(): got %q, want %q", got, "smtp")
	}
}

func TestSend_DeliversToRelay(t *testing.T) {
	t.Parallel()

	relay := testutil.NewRelay(t, "robot@example.com", "secret")
	p := New(ProviderConfig{
		Host:      relay.Addr,
		Username:  "robot@example.com",
		Password:  "secret",
		TLSConfig: relay.ClientTLSConfig(),
	})

	if err := p.Send(context.Background(), testEmail()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := relay.Messages()
	if len(msgs) != 1 {
		t.Fatalf("relay messages: got %d, want 1", len(msgs))
	}
	got := msgs[0]

	if got.User != "robot@example.com" {
		t.Errorf("authenticated user: got %q", got.User)
	}
	if got.From != "robot@example.com" {
		t.Errorf("envelope sender: got %q, want the relay user", got.From)
	}
	wantRcpts := []string{"alice@example.com", "bob@example.com", "carol@example.com", "addr@example.com"}
	if !slices.Equal(got.Rcpts, wantRcpts) {
		t.Errorf("envelope recipients: got %v, want %v", got.Rcpts, wantRcpts)
	}
	if !bytes.Contains(got.Data, []byte("To: alice@example.com, bob@example.com")) {
		t.Error("submitted data missing To header")
	}
	if bytes.Contains(got.Data, []byte("addr@example.com")) {
		t.Error("bcc address must not appear in submitted data")
	}
}

func TestSend_AuthFailure(t *testing.T) {
	t.Parallel()

	relay := testutil.NewRelay(t, "robot@example.com", "secret")
	p := New(ProviderConfig{
		Host:      relay.Addr,
		Username:  "robot@example.com",
		Password:  "wrong",
		TLSConfig: relay.ClientTLSConfig(),
	})

	err := p.Send(context.Background(), testEmail())
	if err == nil {
		t.Fatal("expected authentication error, got nil")
	}
	if kind := mailerr.KindOf(err); kind != mailerr.TransportFailure {
		t.Errorf("kind: got %v, want %v", kind, mailerr.TransportFailure)
	}
	if !strings.Contains(err.Error(), "failed to authenticate as robot@example.com") {
		t.Errorf("error: got %q", err.Error())
	}
	if n := len(relay.Messages()); n != 0 {
		t.Errorf("relay messages: got %d, want 0", n)
	}
}

func TestSend_UntrustedCertificate(t *testing.T) {
	t.Parallel()

	relay := testutil.NewRelay(t, "robot@example.com", "secret")
	p := New(ProviderConfig{
		Host:     relay.Addr,
		Username: "robot@example.com",
		Password: "secret",
	})

	err := p.Send(context.Background(), testEmail())
	if err == nil {
		t.Fatal("expected TLS verification error, got nil")
	}
	if kind := mailerr.KindOf(err); kind != mailerr.TransportFailure {
		t.Errorf("kind: got %v, want %v", kind, mailerr.TransportFailure)
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p := New(ProviderConfig{Host: addr, Username: "u", Password: "p"})
	err = p.Send(context.Background(), testEmail())
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to connect to "+addr) {
		t.Errorf("error: got %q", err.Error())
	}
}

func TestSend_CancelledContext(t *testing.T) {
	t.Parallel()

	relay := testutil.NewRelay(t, "robot@example.com", "secret")
	p := New(ProviderConfig{
		Host:      relay.Addr,
		Username:  "robot@example.com",
		Password:  "secret",
		TLSConfig: relay.ClientTLSConfig(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Send(ctx, testEmail()); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
	if n := relay.Connections(); n != 0 {
		t.Errorf("connections: got %d, want 0", n)
	}
}
