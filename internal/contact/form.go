// Package contact validates contact form submissions and hands valid ones to
// a Mailer.
package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Form field names, used as ValidationErrors keys and as HTML form names.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldSubject    = "subject"
	FieldMessage    = "message"
	FieldAttachment = "attachment"
	FieldHoneypot   = "honeypot"
)

const (
	// MaxAttachmentSize is inclusive: a file of exactly 2 MiB is accepted.
	MaxAttachmentSize = 2 * 1024 * 1024
	MinMessageLength  = 10
)

const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Please enter a valid email address"
	MsgSubjectRequired = "Subject is required"
	MsgMessageRequired = "Message is required"
	MsgMessageTooShort = "Message must be at least 10 characters long"
	MsgAttachmentSize  = "File size must be less than 2MB"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Attachment struct {
	Name string
	Size int64
	Type string
	Data []byte
}

// Form is one snapshot of the contact form. Honeypot is the hidden field real
// visitors never fill in.
type Form struct {
	Name       string
	Email      string
	Subject    string
	Message    string
	Attachment *Attachment
	Honeypot   string
}

// IsSpam reports whether the honeypot was filled in.
func (f Form) IsSpam() bool {
	return f.Honeypot != ""
}

// ValidationErrors maps a field name to a message for the visitor. An empty
// map means the form is valid.
type ValidationErrors map[string]string

func (v ValidationErrors) Valid() bool { return len(v) == 0 }

// Has reports whether field has an error; it is used from templates.
func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Validate runs every rule against f and reports all failures at once.
func Validate(f Form) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}

	if strings.TrimSpace(f.Email) == "" {
		errs[FieldEmail] = MsgEmailRequired
	} else if !emailPattern.MatchString(f.Email) {
		errs[FieldEmail] = MsgEmailInvalid
	}

	if strings.TrimSpace(f.Subject) == "" {
		errs[FieldSubject] = MsgSubjectRequired
	}

	message := strings.TrimSpace(f.Message)
	if message == "" {
		errs[FieldMessage] = MsgMessageRequired
	} else if utf8.RuneCountInString(message) < MinMessageLength {
		errs[FieldMessage] = MsgMessageTooShort
	}

	if f.Attachment != nil && f.Attachment.Size > MaxAttachmentSize {
		errs[FieldAttachment] = MsgAttachmentSize
	}

	return errs
}
