package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/contact"
)

func TestSaveAndListMessages(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db := NewTestDB(t, now)
	ctx := context.Background()

	require.NoError(t, db.SaveSubmission(ctx, contact.Submission{
		ID: "one", Name: "Jo", Email: "jo@example.com", Subject: "Hi",
		Message: "First message body", CreatedAt: now.Add(-time.Minute),
	}))
	require.NoError(t, db.SaveSubmission(ctx, contact.Submission{
		ID: "two", Name: "Sam", Email: "sam@example.com", Subject: "Job",
		Message: "Second message body", AttachmentName: "cv.pdf", AttachmentSize: 1200,
		ClientHash: "abc",
	}))

	msgs, err := db.RecentMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "two", msgs[0].ID)
	assert.Equal(t, "cv.pdf", msgs[0].AttachmentName)
	assert.EqualValues(t, 1200, msgs[0].AttachmentSize)
	assert.True(t, msgs[0].CreatedAt.Equal(now), "zero CreatedAt is stamped")
	assert.Equal(t, "First message body", msgs[1].Message)
}

func TestSaveSubmissionDuplicateID(t *testing.T) {
	db := NewTestDB(t, time.Now())
	ctx := context.Background()

	s := contact.Submission{ID: "dup", Name: "Jo", Email: "jo@example.com", Subject: "Hi", Message: "Body of message"}
	require.NoError(t, db.SaveSubmission(ctx, s))
	assert.Error(t, db.SaveSubmission(ctx, s))
}
