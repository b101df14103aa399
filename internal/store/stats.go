package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Zachkp/portfolio/internal/contact"
)

type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type Stats struct {
	TotalVisitors    int64                `json:"total_visitors"`
	UniqueVisitors   int64                `json:"unique_visitors"`
	VisitorsToday    int64                `json:"visitors_today"`
	VisitorsThisWeek int64                `json:"visitors_this_week"`
	TotalMessages    int64                `json:"total_messages"`
	TopPaths         []PathCount          `json:"top_paths"`
	RecentVisitors   []Visitor            `json:"recent_visitors"`
	RecentMessages   []contact.Submission `json:"recent_messages"`
}

func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	now := db.now()
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{toMillis(startOfDay)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{toMillis(weekAgo)}},
		{&stats.TotalMessages, `SELECT COUNT(*) FROM messages`, nil},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	top, err := db.topPaths(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.TopPaths = top

	if stats.RecentVisitors, err = db.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	if stats.RecentMessages, err = db.RecentMessages(ctx, 10); err != nil {
		return nil, err
	}
	return stats, nil
}

func (db *DB) topPaths(ctx context.Context, limit int) ([]PathCount, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top paths: %w", err)
	}
	defer rows.Close()

	paths := []PathCount{}
	for rows.Next() {
		var p PathCount
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("scan top path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
