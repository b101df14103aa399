package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSendFailed is returned when a valid submission could not be delivered.
// The form should be kept so the visitor can retry.
var ErrSendFailed = errors.New("failed to send message")

// UserSendError is the only thing a visitor is told about a delivery failure.
const UserSendError = "Failed to send message. Please try again or contact me directly."

// Mailer delivers a payload to the site owner.
type Mailer interface {
	Send(ctx context.Context, p Payload) error
}

// Submission is the archived record of a delivered message. Attachment bytes
// are not kept.
type Submission struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	AttachmentName string    `json:"attachment_name,omitempty"`
	AttachmentSize int64     `json:"attachment_size,omitempty"`
	ClientHash     string    `json:"client_hash,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Archive stores delivered submissions.
type Archive interface {
	SaveSubmission(ctx context.Context, s Submission) error
}

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeDropped Outcome = "dropped"
	OutcomeInvalid Outcome = "invalid"
	OutcomeFailed  Outcome = "failed"
)

// Observer is told about every submission outcome.
type Observer interface {
	ObserveContact(outcome Outcome)
}

type Result struct {
	Outcome Outcome
	Errors  ValidationErrors
	ID      string
}

type Service struct {
	mailer   Mailer
	toName   string
	archive  Archive
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithArchive(a Archive) Option { return func(s *Service) { s.archive = a } }

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func NewService(mailer Mailer, toName string, opts ...Option) *Service {
	s := &Service{
		mailer: mailer,
		toName: toName,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the submit path for one form. clientHash identifies the sender
// for the archive without storing their address.
//
// A filled honeypot returns OutcomeDropped and a nil error without touching
// the validator or the mailer. Invalid forms return OutcomeInvalid with the
// errors. A mailer failure returns OutcomeFailed and an error wrapping
// ErrSendFailed.
func (s *Service) Submit(ctx context.Context, f Form, clientHash string) (Result, error) {
	if f.IsSpam() {
		s.logger.Debug("contact submission dropped by honeypot", zap.String("client", clientHash))
		s.observe(OutcomeDropped)
		return Result{Outcome: OutcomeDropped}, nil
	}

	if errs := Validate(f); !errs.Valid() {
		s.observe(OutcomeInvalid)
		return Result{Outcome: OutcomeInvalid, Errors: errs}, nil
	}

	if err := s.mailer.Send(ctx, NewPayload(f, s.toName)); err != nil {
		s.logger.Error("contact email failed", zap.Error(err), zap.String("client", clientHash))
		s.observe(OutcomeFailed)
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	sub := Submission{
		ID:         uuid.NewString(),
		Name:       f.Name,
		Email:      f.Email,
		Subject:    f.Subject,
		Message:    f.Message,
		ClientHash: clientHash,
		CreatedAt:  s.now(),
	}
	if f.Attachment != nil {
		sub.AttachmentName = f.Attachment.Name
		sub.AttachmentSize = f.Attachment.Size
	}
	if s.archive != nil {
		if err := s.archive.SaveSubmission(ctx, sub); err != nil {
			s.logger.Warn("archive contact submission", zap.Error(err), zap.String("id", sub.ID))
		}
	}

	s.logger.Info("contact email sent", zap.String("id", sub.ID), zap.String("client", clientHash))
	s.observe(OutcomeSent)
	return Result{Outcome: OutcomeSent, ID: sub.ID}, nil
}

func (s *Service) observe(o Outcome) {
	if s.observer != nil {
		s.observer.ObserveContact(o)
	}
}
