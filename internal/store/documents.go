package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/storage"
)

// Documents is the SQLite DocumentStore used when Firebase is not configured.
type Documents struct {
	db *DB
}

var _ storage.DocumentStore = (*Documents)(nil)

func (db *DB) Documents() *Documents {
	return &Documents{db: db}
}

func (d *Documents) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	now := toMillis(d.db.now())
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO documents (id, collection, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, collection, string(raw), now, now)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return id, nil
}

func (d *Documents) Get(ctx context.Context, collection, id string) (storage.Document, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Document{}, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	if err != nil {
		return storage.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// List returns the collection newest first.
func (d *Documents) List(ctx context.Context, collection string) ([]storage.Document, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = ? ORDER BY created_at DESC`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []storage.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update merges data into an existing document.
func (d *Documents) Update(ctx context.Context, collection, id string, data map[string]any) error {
	doc, err := d.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	maps.Copy(doc.Data, data)

	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(raw), toMillis(d.db.now()), collection, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (d *Documents) Delete(ctx context.Context, collection, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (storage.Document, error) {
	var doc storage.Document
	var raw string
	var created, updated int64
	if err := s.Scan(&doc.ID, &raw, &created, &updated); err != nil {
		return storage.Document{}, err
	}
	if err := json.Unmarshal([]byte(raw), &doc.Data); err != nil {
		return storage.Document{}, fmt.Errorf("decode document: %w", err)
	}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	doc.CreatedAt = fromMillis(created)
	doc.UpdatedAt = fromMillis(updated)
	return doc, nil
}
