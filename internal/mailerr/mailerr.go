// Package mailerr defines the failure kinds that end a sendmail run.
//
// Every stage of the pipeline returns a *Error so callers can tell failures
// apart with KindOf, while the user only ever sees the message text.
package mailerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Unknown is reported for errors that did not originate in this module.
	Unknown Kind = iota
	// ConfigNotFound means the config file does not exist.
	ConfigNotFound
	// ConfigInvalid means the config file or the TLS settings it names could
	// not be read or parsed.
	ConfigInvalid
	// MissingCredential means mail.host, mail.user or mail.pass is empty
	// after flags are applied.
	MissingCredential
	// EmptyRecipients means no To address was given.
	EmptyRecipients
	// AttachmentNotFound means an attachment path does not exist or could not
	// be read.
	AttachmentNotFound
	// AttachmentNotRegularFile means an attachment path is a directory or
	// another non-regular entry.
	AttachmentNotRegularFile
	// TransportFailure means connecting, authenticating, submitting or closing
	// the SMTP session failed.
	TransportFailure
)

var kindNames = map[Kind]string{
	Unknown:                  "unknown",
	ConfigNotFound:           "config_not_found",
	ConfigInvalid:            "config_invalid",
	MissingCredential:        "missing_credential",
	EmptyRecipients:          "empty_recipients",
	AttachmentNotFound:       "attachment_not_found",
	AttachmentNotRegularFile: "attachment_not_regular_file",
	TransportFailure:         "transport_failure",
}

// String returns the snake_case name of the kind, used as a log attribute.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure carrying a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface. The cause is appended when present.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
