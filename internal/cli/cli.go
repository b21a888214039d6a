// Package cli wires argument parsing, configuration, request processing and
// delivery into a single sendmail run.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/shineum/sendmail/internal/config"
	"github.com/shineum/sendmail/internal/input"
	"github.com/shineum/sendmail/internal/mailerr"
	"github.com/shineum/sendmail/internal/provider"
	"github.com/shineum/sendmail/internal/provider/stdout"
	"github.com/shineum/sendmail/internal/request"
	"github.com/shineum/sendmail/internal/smtp"
	smtptls "github.com/shineum/sendmail/internal/tls"
)

// Version is printed by -v/--version. Overridden at build time via -ldflags.
var Version = "1.0.0"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// App runs sendmail against injectable standard streams.
type App struct {
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer

	// NewProvider replaces provider selection when set.
	NewProvider func(cfg *config.Config, dryRun bool) (provider.Provider, error)
}

// New returns an App bound to the process's standard streams.
func New() *App {
	return &App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// exitRequest carries a kong exit code (e.g. after --help) out of Parse.
type exitRequest int

// Run executes one invocation and returns the process exit code.
func (a *App) Run(ctx context.Context, argv []string) (code int) {
	// -v/--version as the first argument wins over anything that follows,
	// including arguments that would not parse.
	if len(argv) > 0 && (argv[0] == "-v" || argv[0] == "--version") {
		a.printVersion()
		return exitOK
	}

	var args Args
	parser, err := kong.New(&args,
		kong.Name("sendmail"),
		kong.Description("Send mail by SMTP."),
		kong.Vars(vars),
		kong.Writers(a.Stdout, a.Stderr),
		kong.Exit(func(c int) { panic(exitRequest(c)) }),
	)
	if err != nil {
		a.reportError(err)
		return exitError
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	if _, err := parser.Parse(argv); err != nil {
		fmt.Fprintf(a.Stderr, "sendmail: error: %v\n", err)
		fmt.Fprintln(a.Stderr, "Run 'sendmail --help' for usage.")
		return exitUsage
	}

	if args.Version {
		a.printVersion()
		return exitOK
	}

	if err := a.send(ctx, args); err != nil {
		a.reportError(err)
		return exitError
	}
	return exitOK
}

// send runs the pipeline; the first failing stage ends it.
func (a *App) send(ctx context.Context, args Args) error {
	cfg, err := config.LoadFromFile(args.Config)
	if err != nil {
		return err
	}
	cfg.Apply(args.overrides())
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogger(a.Stderr, cfg.Logging.Level)

	processor := &request.Processor{
		ReadStdin: func() (string, bool) { return input.TryRead(a.Stdin) },
	}
	msg, err := processor.Process(args.request(), cfg.Mail)
	if err != nil {
		return err
	}

	prov, err := a.selectProvider(cfg, args.DryRun)
	if err != nil {
		return err
	}

	slog.Debug("sending message",
		"provider", prov.Name(),
		"host", cfg.Mail.Host,
		"message_id", msg.MessageID,
	)
	return prov.Send(ctx, msg)
}

// selectProvider chooses the stdout preview for --dry-run and the SMTP relay
// otherwise.
func (a *App) selectProvider(cfg *config.Config, dryRun bool) (provider.Provider, error) {
	if a.NewProvider != nil {
		return a.NewProvider(cfg, dryRun)
	}

	if dryRun {
		return stdout.NewWithWriter(a.Stdout), nil
	}

	tlsConfig, err := smtptls.ClientConfig(smtp.Addr(cfg.Mail.Host), cfg.Mail.CAFile)
	if err != nil {
		return nil, mailerr.Wrap(mailerr.ConfigInvalid, err, "failed to configure TLS for %s", cfg.Mail.Host)
	}

	return smtp.New(smtp.ProviderConfig{
		Host:      cfg.Mail.Host,
		Username:  cfg.Mail.User,
		Password:  cfg.Mail.Pass,
		TLSConfig: tlsConfig,
	}), nil
}

func (a *App) printVersion() {
	fmt.Fprintf(a.Stdout, "sendmail v%s\n", Version)
}

// reportError prints the message only; the kind goes to the debug log.
func (a *App) reportError(err error) {
	slog.Debug("sendmail failed", "kind", mailerr.KindOf(err), "error", err)
	color.New(color.FgRed).Fprintln(a.Stderr, err.Error())
}

// setupLogger configures the global slog logger with text output on w and the
// specified log level.
func setupLogger(w io.Writer, level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
