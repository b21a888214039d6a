// Package email defines the core email data model used throughout sendmail.
package email

// Email represents a fully processed message, ready to be composed and sent.
type Email struct {
	// EnvelopeFrom is the MAIL FROM address; it is always the relay user,
	// independent of the From header.
	EnvelopeFrom string

	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
	MessageID   string
}

// Attachment represents a file attached to an email message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Recipients returns the envelope recipients: To, then Cc, then Bcc.
// Duplicates are kept.
func (e *Email) Recipients() []string {
	rcpts := make([]string, 0, len(e.To)+len(e.Cc)+len(e.Bcc))
	rcpts = append(rcpts, e.To...)
	rcpts = append(rcpts, e.Cc...)
	rcpts = append(rcpts, e.Bcc...)
	return rcpts
}
