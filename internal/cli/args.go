package cli

import (
	"github.com/shineum/sendmail/internal/config"
	"github.com/shineum/sendmail/internal/request"
)

// Args is the command-line grammar. Repeatable flags never split on commas
// so display names such as "Doe, Jane <jane@example.com>" stay intact.
type Args struct {
	Config     string   `help:"The config path." default:"${config_path}" placeholder:"PATH"`
	To         []string `short:"t" required:"" sep:"none" help:"To address of mail." placeholder:"ADDR"`
	Cc         []string `short:"c" sep:"none" help:"Cc address of mail." placeholder:"ADDR"`
	Bcc        []string `sep:"none" help:"Bcc address of mail." placeholder:"ADDR"`
	Subject    string   `short:"s" required:"" help:"The subject of mail."`
	Attachment []string `short:"a" sep:"none" help:"Add attachment to mail." placeholder:"FILE"`
	From       string   `help:"From address of mail, default is mail.user." placeholder:"ADDR"`
	NoEscape   bool     `name:"noescape" help:"Don't escape content to html."`
	Host       string   `help:"The host of mail."`
	User       string   `help:"The username of mail."`
	Pass       string   `help:"The password of mail."`
	DryRun     bool     `help:"Print the composed message instead of sending it."`
	Version    bool     `short:"v" help:"Print sendmail version."`

	Content string `arg:"" optional:"" default:"${default_content}" help:"The content of mail."`
}

// vars are interpolated into the struct tags above.
var vars = map[string]string{
	"config_path":     config.DefaultPath,
	"default_content": request.DefaultContent,
}

// overrides returns the relay settings given on the command line.
func (a Args) overrides() config.Overrides {
	return config.Overrides{Host: a.Host, User: a.User, Pass: a.Pass}
}

// request returns the mail request described by the arguments.
func (a Args) request() request.Request {
	return request.Request{
		To:          a.To,
		Cc:          a.Cc,
		Bcc:         a.Bcc,
		Subject:     a.Subject,
		From:        a.From,
		Content:     a.Content,
		Attachments: a.Attachment,
		Escape:      !a.NoEscape,
	}
}
