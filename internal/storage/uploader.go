package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachmentsCollection holds one metadata document per uploaded file.
const AttachmentsCollection = "attachments"

// File is the metadata of an uploaded project file.
type File struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	SizeLabel string    `json:"sizeLabel"`
	CreatedAt time.Time `json:"createdAt"`
}

// Uploader stores project files in a BlobStore and records them in a
// DocumentStore.
type Uploader struct {
	blobs  BlobStore
	docs   DocumentStore
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewUploader(blobs BlobStore, docs DocumentStore, opts Options, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		blobs:  blobs,
		docs:   docs,
		opts:   opts.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// Upload validates data, stores it and records its metadata. The content type
// is sniffed from data. An empty folder means DefaultFolder.
func (u *Uploader) Upload(ctx context.Context, projectID, folder, name string, data []byte) (File, error) {
	if projectID == "" {
		return File{}, &ValidationError{Problems: []string{"Project is required"}}
	}
	if name == "" {
		name = "upload-" + uuid.NewString()
	}

	contentType := DetectContentType(data)
	if err := ValidateFile(int64(len(data)), contentType, u.opts); err != nil {
		return File{}, err
	}

	path := GenerateFilePath(projectID, name, folder, u.now())
	obj, err := u.blobs.Put(ctx, path, bytes.NewReader(data), contentType)
	if err != nil {
		return File{}, fmt.Errorf("store file: %w", err)
	}

	id, err := u.docs.Add(ctx, AttachmentsCollection, map[string]any{
		"projectId": projectID,
		"name":      name,
		"path":      obj.Path,
		"url":       obj.URL,
		"type":      contentType,
		"size":      obj.Size,
	})
	if err != nil {
		if delErr := u.blobs.Delete(ctx, obj.Path); delErr != nil {
			u.logger.Warn("orphaned upload", zap.String("path", obj.Path), zap.Error(delErr))
		}
		return File{}, fmt.Errorf("record file: %w", err)
	}

	u.logger.Info("file uploaded",
		zap.String("id", id),
		zap.String("project", projectID),
		zap.String("path", obj.Path),
		zap.Int64("size", obj.Size),
	)

	return File{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		Path:      obj.Path,
		URL:       obj.URL,
		Type:      contentType,
		Size:      obj.Size,
		SizeLabel: FormatFileSize(obj.Size),
		CreatedAt: u.now(),
	}, nil
}

// List returns the files of one project, newest first.
func (u *Uploader) List(ctx context.Context, projectID string) ([]File, error) {
	docs, err := u.docs.List(ctx, AttachmentsCollection)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(docs))
	for _, d := range docs {
		f := fileFromDocument(d)
		if f.ProjectID == projectID {
			files = append(files, f)
		}
	}
	slices.SortStableFunc(files, func(a, b File) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return files, nil
}

// Remove deletes the blob and then its metadata. A blob that is already gone
// does not stop the metadata from being removed.
func (u *Uploader) Remove(ctx context.Context, id string) error {
	doc, err := u.docs.Get(ctx, AttachmentsCollection, id)
	if err != nil {
		return err
	}
	f := fileFromDocument(doc)

	if err := u.blobs.Delete(ctx, f.Path); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete file: %w", err)
	}
	if err := u.docs.Delete(ctx, AttachmentsCollection, id); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}

	u.logger.Info("file removed", zap.String("id", id), zap.String("path", f.Path))
	return nil
}

func fileFromDocument(d Document) File {
	size := toInt64(d.Data["size"])
	return File{
		ID:        d.ID,
		ProjectID: toString(d.Data["projectId"]),
		Name:      toString(d.Data["name"]),
		Path:      toString(d.Data["path"]),
		URL:       toString(d.Data["url"]),
		Type:      toString(d.Data["type"]),
		Size:      size,
		SizeLabel: FormatFileSize(size),
		CreatedAt: d.CreatedAt,
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

// toInt64 accepts the number types that JSON and Firestore decode into.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
