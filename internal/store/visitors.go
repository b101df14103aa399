package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Visitor is one tracked page view. The client address is only kept hashed.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Hasher turns client addresses into stable, salted identifiers.
type Hasher struct {
	salt string
}

func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// NewRandomHasher salts with fresh random bytes, so hashes only match within
// one process lifetime.
func NewRandomHasher() (*Hasher, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return NewHasher(hex.EncodeToString(b)), nil
}

func (h *Hasher) Hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (db *DB) TrackVisit(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, created_at) VALUES (?, ?, ?, ?)`,
		hashedIP, userAgent, path, toMillis(db.now()))
	if err != nil {
		return fmt.Errorf("record visitor: %w", err)
	}
	return nil
}

func (db *DB) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, created_at
		FROM visitors
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	visitors := []Visitor{}
	for rows.Next() {
		var v Visitor
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp = fromMillis(ts)
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

// CleanupVisitors deletes visits older than retention and reports how many
// rows went.
func (db *DB) CleanupVisitors(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := db.now().Add(-retention)
	res, err := db.ExecContext(ctx, `DELETE FROM visitors WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	return res.RowsAffected()
}

// ForgetVisitor removes every visit recorded for one hashed address.
func (db *DB) ForgetVisitor(ctx context.Context, hashedIP string) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM visitors WHERE hashed_ip = ?`, hashedIP)
	if err != nil {
		return 0, fmt.Errorf("delete visitor data: %w", err)
	}
	return res.RowsAffected()
}
