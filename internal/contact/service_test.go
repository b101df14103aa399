package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []Payload
	err  error
}

func (m *fakeMailer) Send(_ context.Context, p Payload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, p)
	return nil
}

type fakeArchive struct {
	saved []Submission
	err   error
}

func (a *fakeArchive) SaveSubmission(_ context.Context, s Submission) error {
	a.saved = append(a.saved, s)
	return a.err
}

type countingObserver map[Outcome]int

func (o countingObserver) ObserveContact(outcome Outcome) { o[outcome]++ }

func TestSubmitHoneypotSkipsEverything(t *testing.T) {
	mailer := &fakeMailer{}
	archive := &fakeArchive{}
	obs := countingObserver{}
	svc := NewService(mailer, "Owner", WithArchive(archive), WithObserver(obs))

	// Invalid on purpose: the validator must not run either.
	res, err := svc.Submit(context.Background(), Form{Honeypot: "bot"}, "client")

	require.NoError(t, err)
	assert.Equal(t, OutcomeDropped, res.Outcome)
	assert.Nil(t, res.Errors)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, archive.saved)
	assert.Equal(t, 1, obs[OutcomeDropped])
}

func TestSubmitInvalidDoesNotSend(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, "Owner")

	res, err := svc.Submit(context.Background(), Form{Name: "Jo"}, "client")

	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Len(t, res.Errors, 3)
	assert.Empty(t, mailer.sent)
}

func TestSubmitSendFailure(t *testing.T) {
	cause := errors.New("upstream 500")
	archive := &fakeArchive{}
	obs := countingObserver{}
	svc := NewService(&fakeMailer{err: cause}, "Owner", WithArchive(archive), WithObserver(obs))

	res, err := svc.Submit(context.Background(), validForm(), "client")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Empty(t, archive.saved)
	assert.Equal(t, 1, obs[OutcomeFailed])
}

func TestSubmitSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	archive := &fakeArchive{}
	svc := NewService(mailer, "Owner", WithArchive(archive))

	f := validForm()
	f.Attachment = &Attachment{Name: "notes.txt", Size: 5, Type: "text/plain", Data: []byte("hello")}

	res, err := svc.Submit(context.Background(), f, "abc123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.NotEmpty(t, res.ID)

	require.Len(t, mailer.sent, 1)
	p := mailer.sent[0]
	assert.Equal(t, "Jo", p.FromName)
	assert.Equal(t, "jo@example.com", p.ReplyTo)
	assert.Equal(t, "Owner", p.ToName)
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", p.Attachment)
	assert.Equal(t, "notes.txt", p.AttachmentName)

	require.Len(t, archive.saved, 1)
	s := archive.saved[0]
	assert.Equal(t, res.ID, s.ID)
	assert.Equal(t, "abc123", s.ClientHash)
	assert.Equal(t, "notes.txt", s.AttachmentName)
	assert.Equal(t, int64(5), s.AttachmentSize)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestSubmitArchiveFailureIsNotSurfaced(t *testing.T) {
	svc := NewService(&fakeMailer{}, "Owner", WithArchive(&fakeArchive{err: errors.New("disk full")}))

	res, err := svc.Submit(context.Background(), validForm(), "client")

	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
}
