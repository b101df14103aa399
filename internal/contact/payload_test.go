package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPayloadWithoutAttachment(t *testing.T) {
	p := NewPayload(validForm(), "Rusith Fernando")

	assert.Empty(t, p.Attachment)
	assert.Equal(t, map[string]string{
		"from_name":  "Jo",
		"from_email": "jo@example.com",
		"subject":    "Hi",
		"message":    "1234567890",
		"to_name":    "Rusith Fernando",
		"reply_to":   "jo@example.com",
	}, p.Params())
}

func TestNewPayloadWithAttachment(t *testing.T) {
	f := validForm()
	f.Attachment = &Attachment{Name: "a.bin", Size: 3, Data: []byte{1, 2, 3}}

	params := NewPayload(f, "Owner").Params()

	assert.Equal(t, "data:application/octet-stream;base64,AQID", params["attachment"])
	assert.Equal(t, "a.bin", params["attachment_name"])
}

func TestParseDataURL(t *testing.T) {
	ct, data, ok := ParseDataURL(DataURL("image/png", []byte("png-bytes")))
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("png-bytes"), data)

	for _, bad := range []string{"", "hello", "data:text/plain,hello", "data:text/plain;base64,%%%"} {
		_, _, ok := ParseDataURL(bad)
		assert.False(t, ok, bad)
	}
}

func TestCleanContentType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "application/octet-stream"},
		{"  ", "application/octet-stream"},
		{"image/png", "image/png"},
		{"Image/PNG", "image/png"},
		{"text/plain\r\nBcc: someone@example.com", "application/octet-stream"},
		{"not a type", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanContentType(tt.in), "%q", tt.in)
	}
}

func TestNewPayloadCleansAttachmentType(t *testing.T) {
	f := validForm()
	f.Attachment = &Attachment{Name: "a.txt", Size: 1, Type: "text/plain\r\nX-Injected: 1", Data: []byte("a")}

	p := NewPayload(f, "Owner")

	assert.Equal(t, DataURL("application/octet-stream", []byte("a")), p.Attachment)
}
