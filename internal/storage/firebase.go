package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const (
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

type FirebaseConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsPath string
}

// Firebase bundles the Cloud Storage bucket and Firestore client of one app.
type Firebase struct {
	Blobs     *FirebaseBlobs
	Documents *FirestoreDocuments
	firestore *firestore.Client
}

func NewFirebase(ctx context.Context, cfg FirebaseConfig) (*Firebase, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	sc, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase storage: %w", err)
	}
	bucket, err := sc.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("open default bucket: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}

	return &Firebase{
		Blobs:     &FirebaseBlobs{bucket: bucket, name: cfg.Bucket},
		Documents: &FirestoreDocuments{client: fs},
		firestore: fs,
	}, nil
}

func (f *Firebase) Close() error {
	return f.firestore.Close()
}

type FirebaseBlobs struct {
	bucket *gcs.BucketHandle
	name   string
}

func (b *FirebaseBlobs) Put(ctx context.Context, p string, r io.Reader, contentType string) (Object, error) {
	p, err := cleanPath(p)
	if err != nil {
		return Object{}, err
	}

	w := b.bucket.Object(p).NewWriter(ctx)
	w.ContentType = contentType
	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return Object{}, fmt.Errorf("upload %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", p, err)
	}

	return Object{
		Path:        p,
		URL:         fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", b.name, url.PathEscape(p)),
		Size:        n,
		ContentType: contentType,
	}, nil
}

func (b *FirebaseBlobs) Delete(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := b.bucket.Object(p).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

type FirestoreDocuments struct {
	client *firestore.Client
}

func (d *FirestoreDocuments) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	doc := make(map[string]any, len(data)+2)
	for k, v := range data {
		doc[k] = v
	}
	doc[fieldCreatedAt] = firestore.ServerTimestamp
	doc[fieldUpdatedAt] = firestore.ServerTimestamp

	ref, _, err := d.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (d *FirestoreDocuments) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := d.client.Collection(collection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromSnapshot(snap), nil
}

func (d *FirestoreDocuments) List(ctx context.Context, collection string) ([]Document, error) {
	snaps, err := d.client.Collection(collection).OrderBy(fieldCreatedAt, firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, s := range snaps {
		docs = append(docs, fromSnapshot(s))
	}
	return docs, nil
}

// Update fails for a missing document, unlike Set.
func (d *FirestoreDocuments) Update(ctx context.Context, collection, id string, data map[string]any) error {
	updates := make([]firestore.Update, 0, len(data)+1)
	for k, v := range data {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	updates = append(updates, firestore.Update{Path: fieldUpdatedAt, Value: firestore.ServerTimestamp})

	if _, err := d.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (d *FirestoreDocuments) Delete(ctx context.Context, collection, id string) error {
	if _, err := d.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func fromSnapshot(s *firestore.DocumentSnapshot) Document {
	data := s.Data()
	delete(data, fieldCreatedAt)
	delete(data, fieldUpdatedAt)
	return Document{
		ID:        s.Ref.ID,
		Data:      data,
		CreatedAt: s.CreateTime,
		UpdatedAt: s.UpdateTime,
	}
}
