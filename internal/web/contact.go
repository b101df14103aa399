package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/contact"
)

var errBadAttachment = errors.New("attachment data is not valid base64")

// contactView is the form as re-rendered after a failed submit. Values are
// kept so the visitor does not have to type them again.
type contactView struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	Errors    contact.ValidationErrors
	SendError string
}

func viewOf(f contact.Form) contactView {
	return contactView{Name: f.Name, Email: f.Email, Subject: f.Subject, Message: f.Message}
}

type contactRequest struct {
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Subject    string             `json:"subject"`
	Message    string             `json:"message"`
	Honeypot   string             `json:"honeypot"`
	Attachment *attachmentRequest `json:"attachment"`
}

// attachmentRequest carries the file as a data URL or plain base64.
type attachmentRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

func (r contactRequest) form() (contact.Form, error) {
	f := contact.Form{
		Name:     r.Name,
		Email:    r.Email,
		Subject:  r.Subject,
		Message:  r.Message,
		Honeypot: r.Honeypot,
	}
	if r.Attachment == nil || r.Attachment.Data == "" {
		return f, nil
	}

	ct, data, ok := contact.ParseDataURL(r.Attachment.Data)
	if !ok {
		var err error
		if data, err = base64.StdEncoding.DecodeString(r.Attachment.Data); err != nil {
			return contact.Form{}, errBadAttachment
		}
		ct = r.Attachment.Type
	}
	ct = contact.CleanContentType(ct)
	f.Attachment = &contact.Attachment{
		Name: r.Attachment.Name,
		Size: int64(len(data)),
		Type: ct,
		Data: data,
	}
	return f, nil
}

// maxFieldBytes caps each text field of a multipart submission.
const maxFieldBytes = 64 << 10

// parseContactForm reads a urlencoded or multipart submission. Multipart
// bodies are streamed: an attachment over MaxAttachmentSize keeps counting
// its size but its bytes are dropped, and hitting the body limit inside the
// attachment ends the read with the fields seen so far. Validation then
// rejects the attachment by size and the visitor keeps what they typed.
func parseContactForm(r *http.Request) (contact.Form, error) {
	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return contact.Form{}, err
		}
		return formFromValues(r.PostForm, nil), nil
	}
	if err != nil {
		return contact.Form{}, err
	}

	values := url.Values{}
	var att *contact.Attachment
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return contact.Form{}, err
		}

		if part.FormName() == contact.FieldAttachment && part.FileName() != "" {
			a, err := readAttachment(part)
			if a.Size > 0 {
				att = a
			}
			if isTooLarge(err) {
				break
			}
			if err != nil {
				return contact.Form{}, fmt.Errorf("read attachment: %w", err)
			}
			continue
		}

		b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
		if err != nil {
			return contact.Form{}, err
		}
		values.Add(part.FormName(), string(b))
	}
	return formFromValues(values, att), nil
}

func formFromValues(v url.Values, att *contact.Attachment) contact.Form {
	return contact.Form{
		Name:       v.Get(contact.FieldName),
		Email:      v.Get(contact.FieldEmail),
		Subject:    v.Get(contact.FieldSubject),
		Message:    v.Get(contact.FieldMessage),
		Honeypot:   v.Get(contact.FieldHoneypot),
		Attachment: att,
	}
}

// readAttachment keeps at most MaxAttachmentSize bytes. Past that it only
// counts, and Data is nil. A body limit error is returned with the size
// counted so far, which is already over the limit or marked as such.
func readAttachment(part *multipart.Part) (*contact.Attachment, error) {
	att := &contact.Attachment{
		Name: part.FileName(),
		Type: contact.CleanContentType(part.Header.Get("Content-Type")),
	}

	data, err := io.ReadAll(io.LimitReader(part, contact.MaxAttachmentSize+1))
	att.Size = int64(len(data))
	if err != nil {
		if isTooLarge(err) {
			att.Size = contact.MaxAttachmentSize + 1
		}
		return att, err
	}
	if att.Size <= contact.MaxAttachmentSize {
		att.Data = data
		return att, nil
	}

	rest, err := io.Copy(io.Discard, part)
	att.Size += rest
	return att, err
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func requestErrorStatus(err error) int {
	if isTooLarge(err) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// allowContact applies the rate limit to the hashed client address. Limiter
// errors are logged and the limiter's decision still applies.
func (s *Server) allowContact(c *gin.Context) (string, bool) {
	hash := s.hasher.Hash(c.ClientIP())
	if s.limiter == nil {
		return hash, true
	}
	ok, err := s.limiter.Allow(c.Request.Context(), hash)
	if err != nil {
		s.requestLogger(c).Warn("contact rate limiter", zap.Error(err))
	}
	if !ok {
		s.requestLogger(c).Info("contact rate limited", zap.String("client", hash))
		if s.metrics != nil {
			s.metrics.RateLimited.Inc()
		}
	}
	return hash, ok
}

// submitContactHTML answers the htmx form. Every outcome is a 200 fragment so
// htmx swaps it in.
func (s *Server) submitContactHTML(c *gin.Context) {
	hash, ok := s.allowContact(c)
	if !ok {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": rateLimitMessage})
		return
	}

	f, err := parseContactForm(c.Request)
	if err != nil {
		s.requestLogger(c).Info("bad contact form", zap.Error(err))
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": "Sorry, that submission could not be read."})
		return
	}

	res, err := s.contact.Submit(c.Request.Context(), f, hash)
	switch {
	case err != nil:
		view := viewOf(f)
		view.SendError = contact.UserSendError
		c.HTML(http.StatusOK, "contact-form.html", gin.H{"form": view})
	case res.Outcome == contact.OutcomeInvalid:
		view := viewOf(f)
		view.Errors = res.Errors
		c.HTML(http.StatusOK, "contact-form.html", gin.H{"form": view})
	default:
		// A dropped spam submission looks like a sent one.
		c.HTML(http.StatusOK, "contact-success.html", gin.H{"success": contactSuccess})
	}
}

func (s *Server) submitContactJSON(c *gin.Context) {
	hash, ok := s.allowContact(c)
	if !ok {
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitMessage})
		return
	}

	var f contact.Form
	if c.ContentType() == gin.MIMEJSON {
		var req contactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(requestErrorStatus(err), gin.H{"error": "invalid request body"})
			return
		}
		var err error
		if f, err = req.form(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		var err error
		if f, err = parseContactForm(c.Request); err != nil {
			c.JSON(requestErrorStatus(err), gin.H{"error": "invalid request body"})
			return
		}
	}

	res, err := s.contact.Submit(c.Request.Context(), f, hash)
	switch {
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": contact.UserSendError})
	case res.Outcome == contact.OutcomeInvalid:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": res.Errors})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": contactSuccess})
	}
}
