// Package testutil provides an in-process implicit-TLS SMTP relay and a fake
// provider for tests.
package testutil

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"

	smtptls "github.com/shineum/sendmail/internal/tls"
)

// Message is one submission accepted by the Relay.
type Message struct {
	User  string
	From  string
	Rcpts []string
	Data  []byte
}

// Relay is an SMTP server listening on 127.0.0.1 behind implicit TLS with a
// self-signed certificate. It accepts AUTH PLAIN for a single account.
type Relay struct {
	// Addr is the host:port the relay listens on.
	Addr string

	cert     *tls.Certificate
	username string
	password string

	mu          sync.Mutex
	messages    []Message
	connections int
}

// NewRelay starts a relay that is shut down when t finishes.
func NewRelay(t testing.TB, username, password string) *Relay {
	t.Helper()

	cert, err := smtptls.GenerateSelfSignedCert()
	if err != nil {
		t.Fatalf("failed to generate relay certificate: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	r := &Relay{
		Addr:     ln.Addr().String(),
		cert:     cert,
		username: username,
		password: password,
	}

	tlsLn := tls.NewListener(&countingListener{Listener: ln, relay: r}, &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	})

	server := gosmtp.NewServer(&relayBackend{relay: r})
	server.Domain = "localhost"
	server.AllowInsecureAuth = true

	go func() {
		_ = server.Serve(tlsLn)
	}()
	t.Cleanup(func() {
		server.Close()
	})

	return r
}

// ClientTLSConfig trusts the relay certificate.
func (r *Relay) ClientTLSConfig() *tls.Config {
	leaf, err := x509.ParseCertificate(r.cert.Certificate[0])
	if err != nil {
		panic(err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	return &tls.Config{
		RootCAs:    pool,
		ServerName: "localhost",
		MinVersion: tls.VersionTLS12,
	}
}

// WriteCAFile writes the relay certificate as PEM into dir and returns its path.
func (r *Relay) WriteCAFile(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "relay.pem")
	if err := os.WriteFile(path, smtptls.CertificatePEM(r.cert), 0644); err != nil {
		t.Fatalf("failed to write relay CA file: %v", err)
	}
	return path
}

// Messages returns a copy of the accepted submissions.
func (r *Relay) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Connections returns the number of TCP connections accepted so far.
func (r *Relay) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connections
}

type countingListener struct {
	net.Listener
	relay *Relay
}

func (l *countingListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err == nil {
		l.relay.mu.Lock()
		l.relay.connections++
		l.relay.mu.Unlock()
	}
	return conn, err
}

type relayBackend struct {
	relay *Relay
}

func (b *relayBackend) NewSession(_ *gosmtp.Conn) (gosmtp.Session, error) {
	return &relaySession{relay: b.relay}, nil
}

// relaySession implements gosmtp.AuthSession.
type relaySession struct {
	relay *Relay
	user  string
	from  string
	rcpts []string
}

func (s *relaySession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *relaySession) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, errors.New("unsupported mechanism")
	}
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != s.relay.username || password != s.relay.password {
			return errors.New("invalid credentials")
		}
		s.user = username
		return nil
	}), nil
}

func (s *relaySession) Mail(from string, _ *gosmtp.MailOptions) error {
	if s.user == "" {
		return errors.New("authentication required")
	}
	s.from = from
	return nil
}

func (s *relaySession) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	s.rcpts = append(s.rcpts, to)
	return nil
}

func (s *relaySession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()
	s.relay.messages = append(s.relay.messages, Message{
		User:  s.user,
		From:  s.from,
		Rcpts: append([]string(nil), s.rcpts...),
		Data:  data,
	})
	return nil
}

func (s *relaySession) Reset() {
	s.from = ""
	s.rcpts = nil
}

func (s *relaySession) Logout() error {
	return nil
}
