// Package config loads the SMTP relay settings from an INI (or YAML) file and
// layers command-line overrides on top of them.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/shineum/sendmail/internal/mailerr"
)

// DefaultPath is used when --config is not given.
const DefaultPath = "/usr/local/sendmail/config.ini"

// Config holds the complete application configuration.
type Config struct {
	Mail    MailConfig    `yaml:"mail"`
	Logging LoggingConfig `yaml:"log"`
}

// MailConfig holds the relay address and credentials.
type MailConfig struct {
	Host string `yaml:"host" ini:"host"`
	User string `yaml:"user" ini:"user"`
	Pass string `yaml:"pass" ini:"pass"`

	// CAFile is an optional PEM bundle trusted in addition to the system roots.
	CAFile string `yaml:"ca_file" ini:"ca_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" ini:"level"`
}

// Overrides carries values supplied on the command line. Empty fields leave
// the file value untouched.
type Overrides struct {
	Host string
	User string
	Pass string
}

// LoadFromFile reads the configuration at path. A missing [mail] section is
// not an error; a missing file is.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, mailerr.New(mailerr.ConfigNotFound, "Config path not found %s", path)
		}
		return nil, mailerr.Wrap(mailerr.ConfigInvalid, err, "failed to read config file %s", path)
	}

	cfg := &Config{}
	cfg.applyDefaults()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = cfg.loadYAML(path)
	default:
		err = cfg.loadINI(path)
	}
	if err != nil {
		return nil, mailerr.Wrap(mailerr.ConfigInvalid, err, "failed to parse config file %s", path)
	}

	return cfg, nil
}

// Apply overrides file values with non-empty command-line values.
func (c *Config) Apply(o Overrides) {
	if o.Host != "" {
		c.Mail.Host = o.Host
	}
	if o.User != "" {
		c.Mail.User = o.User
	}
	if o.Pass != "" {
		c.Mail.Pass = o.Pass
	}
}

// Validate reports the first missing relay setting.
func (c *Config) Validate() error {
	switch {
	case c.Mail.Host == "":
		return mailerr.New(mailerr.MissingCredential, "Please configure mail.host")
	case c.Mail.User == "":
		return mailerr.New(mailerr.MissingCredential, "Please configure mail.user")
	case c.Mail.Pass == "":
		return mailerr.New(mailerr.MissingCredential, "Please configure mail.pass")
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	c.Logging.Level = "warn"
}

func (c *Config) loadINI(path string) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys: true,
		// Passwords may contain '#', ';' or surrounding quotes.
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, path)
	if err != nil {
		return err
	}

	if f.HasSection("mail") {
		if err := f.Section("mail").MapTo(&c.Mail); err != nil {
			return err
		}
	}
	if f.HasSection("log") {
		if err := f.Section("log").MapTo(&c.Logging); err != nil {
			return err
		}
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	return nil
}
