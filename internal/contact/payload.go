package contact

import (
	"encoding/base64"
	"mime"
	"strings"
)

const defaultContentType = "application/octet-stream"

// Payload is what the email collaborator receives. Keys match the EmailJS
// template parameters used by the site's template.
type Payload struct {
	FromName       string `json:"from_name"`
	FromEmail      string `json:"from_email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	ToName         string `json:"to_name"`
	ReplyTo        string `json:"reply_to"`
	Attachment     string `json:"attachment,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

// NewPayload builds the outbound payload for a validated form. The attachment,
// if any, is encoded as a data URL.
func NewPayload(f Form, toName string) Payload {
	p := Payload{
		FromName:  f.Name,
		FromEmail: f.Email,
		Subject:   f.Subject,
		Message:   f.Message,
		ToName:    toName,
		ReplyTo:   f.Email,
	}
	if f.Attachment != nil {
		p.Attachment = DataURL(CleanContentType(f.Attachment.Type), f.Attachment.Data)
		p.AttachmentName = f.Attachment.Name
	}
	return p
}

// Params flattens the payload into template parameters.
func (p Payload) Params() map[string]string {
	params := map[string]string{
		"from_name":  p.FromName,
		"from_email": p.FromEmail,
		"subject":    p.Subject,
		"message":    p.Message,
		"to_name":    p.ToName,
		"reply_to":   p.ReplyTo,
	}
	if p.Attachment != "" {
		params["attachment"] = p.Attachment
		params["attachment_name"] = p.AttachmentName
	}
	return params
}

// CleanContentType returns a well-formed media type for a client-supplied one.
// Anything mime.ParseMediaType rejects, including values carrying CR or LF,
// becomes application/octet-stream.
func CleanContentType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return defaultContentType
	}
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultContentType
	}
	if clean := mime.FormatMediaType(mt, params); clean != "" {
		return clean
	}
	return defaultContentType
}

// DataURL encodes data as "data:<type>;base64,<data>". An empty type becomes
// application/octet-stream.
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = defaultContentType
	}
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(contentType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// ParseDataURL reverses DataURL. ok is false for anything that is not a
// base64 data URL.
func ParseDataURL(s string) (contentType string, data []byte, ok bool) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return "", nil, false
	}
	meta, encoded, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, false
	}
	contentType, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, false
	}
	return contentType, data, true
}
