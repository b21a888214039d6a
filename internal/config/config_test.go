package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shineum/sendmail/internal/mailerr"
)

// writeConfig writes content to name inside a fresh temp dir and returns its path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadFromFile_INI(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.ini", `
[mail]
host = smtp.example.com
User = robot@example.com
pass = s3cr#t;pw
ca_file = /etc/ssl/relay.pem

[log]
level = DEBUG
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mail.Host != "smtp.example.com" {
		t.Errorf("Mail.Host: got %q, want %q", cfg.Mail.Host, "smtp.example.com")
	}
	if cfg.Mail.User != "robot@example.com" {
		t.Errorf("Mail.User: got %q, want %q (keys are case-insensitive)", cfg.Mail.User, "robot@example.com")
	}
	if cfg.Mail.Pass != "s3cr#t;pw" {
		t.Errorf("Mail.Pass: got %q, want %q (inline comment chars are part of the value)", cfg.Mail.Pass, "s3cr#t;pw")
	}
	if cfg.Mail.CAFile != "/etc/ssl/relay.pem" {
		t.Errorf("Mail.CAFile: got %q, want %q", cfg.Mail.CAFile, "/etc/ssl/relay.pem")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadFromFile_INIKeepsQuotes(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.ini", `
[mail]
host = smtp.example.com
user = robot@example.com
pass = "s3cret"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mail.Pass != `"s3cret"` {
		t.Errorf("Mail.Pass: got %q, want %q (quotes are part of the value)", cfg.Mail.Pass, `"s3cret"`)
	}
}

func TestLoadFromFile_MissingMailSection(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.ini", "[other]\nkey = value\n")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mail != (MailConfig{}) {
		t.Errorf("Mail: got %+v, want zero value", cfg.Mail)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level: got %q, want default %q", cfg.Logging.Level, "warn")
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.yaml", `
mail:
  host: "smtp.example.com:2465"
  user: "robot@example.com"
  pass: "secret"
log:
  level: "info"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mail.Host != "smtp.example.com:2465" {
		t.Errorf("Mail.Host: got %q, want %q", cfg.Mail.Host, "smtp.example.com:2465")
	}
	if cfg.Mail.User != "robot@example.com" {
		t.Errorf("Mail.User: got %q, want %q", cfg.Mail.User, "robot@example.com")
	}
	if cfg.Mail.Pass != "secret" {
		t.Errorf("Mail.Pass: got %q, want %q", cfg.Mail.Pass, "secret")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.ini")
	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if kind := mailerr.KindOf(err); kind != mailerr.ConfigNotFound {
		t.Errorf("kind: got %v, want %v", kind, mailerr.ConfigNotFound)
	}
	if want := "Config path not found " + path; err.Error() != want {
		t.Errorf("message: got %q, want %q", err.Error(), want)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.yaml", "{{invalid yaml")

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
	if kind := mailerr.KindOf(err); kind != mailerr.ConfigInvalid {
		t.Errorf("kind: got %v, want %v", kind, mailerr.ConfigInvalid)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		o    Overrides
		want MailConfig
	}{
		{
			name: "no overrides keep file values",
			o:    Overrides{},
			want: MailConfig{Host: "file-host", User: "file-user", Pass: "file-pass"},
		},
		{
			name: "host only",
			o:    Overrides{Host: "flag-host"},
			want: MailConfig{Host: "flag-host", User: "file-user", Pass: "file-pass"},
		},
		{
			name: "all overridden",
			o:    Overrides{Host: "h", User: "u", Pass: "p"},
			want: MailConfig{Host: "h", User: "u", Pass: "p"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{Mail: MailConfig{Host: "file-host", User: "file-user", Pass: "file-pass"}}
			cfg.Apply(tt.o)
			if cfg.Mail != tt.want {
				t.Errorf("Mail: got %+v, want %+v", cfg.Mail, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mail    MailConfig
		wantErr string
	}{
		{name: "complete", mail: MailConfig{Host: "h", User: "u", Pass: "p"}},
		{name: "missing host", mail: MailConfig{User: "u", Pass: "p"}, wantErr: "configure mail.host"},
		{name: "missing user", mail: MailConfig{Host: "h", Pass: "p"}, wantErr: "configure mail.user"},
		{name: "missing pass", mail: MailConfig{Host: "h", User: "u"}, wantErr: "configure mail.pass"},
		{name: "host reported first", mail: MailConfig{}, wantErr: "configure mail.host"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{Mail: tt.mail}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %q, want it to contain %q", err.Error(), tt.wantErr)
			}
			if kind := mailerr.KindOf(err); kind != mailerr.MissingCredential {
				t.Errorf("kind: got %v, want %v", kind, mailerr.MissingCredential)
			}
		})
	}
}
