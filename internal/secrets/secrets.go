// Package secrets stores small secret values, versioned per key.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// PhoneNumberKey holds the single phone identity authorized to send.
const PhoneNumberKey = "signal-phone-number"

// ErrNotFound indicates the secret has never been written.
var ErrNotFound = errors.New("secret not found")

// SecretStore reads the latest version of a secret and appends new versions.
type SecretStore interface {
	GetLatest(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, value string) error
}

// KVStore backs SecretStore with a JetStream key-value bucket. KV revisions
// give each Put a new version while GetLatest always sees the newest.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore creates (or opens) the named bucket with version history.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("kv bucket %s: %w", bucket, err)
	}
	return &KVStore{kv: kv}, nil
}

// GetLatest implements SecretStore.
func (s *KVStore) GetLatest(ctx context.Context, name string) (string, error) {
	entry, err := s.kv.Get(ctx, name)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	return string(entry.Value()), nil
}

// Put implements SecretStore.
func (s *KVStore) Put(ctx context.Context, name, value string) error {
	if _, err := s.kv.Put(ctx, name, []byte(value)); err != nil {
		return fmt.Errorf("put secret %s: %w", name, err)
	}
	return nil
}
