package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go/jetstream"
)

// ErrNotFound indicates no archive exists under the requested key.
var ErrNotFound = errors.New("config archive not found")

// ConfigStore persists identity config archives as opaque blobs, keyed by
// phone number and trust tier.
type ConfigStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// TempKey is the pre-verification archive key for a phone identity.
func TempKey(phone string) string { return fmt.Sprintf("temp/%s/config.tar.gz", phone) }

// VerifiedKey is the post-verification archive key. Only verified archives
// are ever used for sending.
func VerifiedKey(phone string) string { return fmt.Sprintf("verified/%s/config.tar.gz", phone) }

// ObjectStore backs ConfigStore with a JetStream object store bucket.
type ObjectStore struct {
	bucket jetstream.ObjectStore
}

// NewObjectStore creates (or opens) the named bucket.
func NewObjectStore(ctx context.Context, js jetstream.JetStream, bucket string) (*ObjectStore, error) {
	obj, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("object store %s: %w", bucket, err)
	}
	return &ObjectStore{bucket: obj}, nil
}

// Load implements ConfigStore.
func (s *ObjectStore) Load(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Save implements ConfigStore. An existing archive under key is overwritten.
func (s *ObjectStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.bucket.Put(ctx, jetstream.ObjectMeta{Name: key}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
