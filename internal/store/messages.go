package store

import (
	"context"
	"fmt"

	"github.com/Zachkp/portfolio/internal/contact"
)

var _ contact.Archive = (*DB)(nil)

func (db *DB) SaveSubmission(ctx context.Context, s contact.Submission) error {
	created := s.CreatedAt
	if created.IsZero() {
		created = db.now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, subject, body, attachment_name, attachment_size, client_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Subject, s.Message, s.AttachmentName, s.AttachmentSize, s.ClientHash, toMillis(created))
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (db *DB) RecentMessages(ctx context.Context, limit int) ([]contact.Submission, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, subject, body, attachment_name, attachment_size, client_hash, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []contact.Submission{}
	for rows.Next() {
		var s contact.Submission
		var ts int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Subject, &s.Message,
			&s.AttachmentName, &s.AttachmentSize, &s.ClientHash, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		s.CreatedAt = fromMillis(ts)
		msgs = append(msgs, s)
	}
	return msgs, rows.Err()
}
