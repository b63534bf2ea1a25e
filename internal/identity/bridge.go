// Package identity manages the lifecycle of one phone-bound Signal identity:
// unregistered -> pending-verification -> verified. The signal-cli working
// directory is the identity's real state; between invocations it lives in
// blob storage as a tar.gz archive, keyed by phone number and trust tier.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mvngu/signalstock/internal/archive"
	"github.com/mvngu/signalstock/internal/secrets"
	"github.com/mvngu/signalstock/internal/signalcli"
)

// FailureKind classifies a bridge failure for boundary mapping:
// timeouts, CLI rejections and internal faults surface differently.
type FailureKind int

const (
	// FailCLI: signal-cli exited non-zero, or the request is invalid
	// (e.g. verify before register). Maps to a 400-class response.
	FailCLI FailureKind = iota
	// FailTimeout: the CLI exceeded its deadline. Maps to 408.
	FailTimeout
	// FailNoIdentity: no phone number has completed verification yet.
	FailNoIdentity
	// FailInternal: storage or subprocess plumbing broke. Maps to 500.
	FailInternal
)

// Error is a classified bridge failure.
type Error struct {
	Kind   FailureKind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func cliErr(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Bridge drives signal-cli against archived identity state.
type Bridge struct {
	transport *signalcli.Transport
	configs   archive.ConfigStore
	secrets   secrets.SecretStore
}

// NewBridge wires the bridge's collaborators.
func NewBridge(t *signalcli.Transport, cs archive.ConfigStore, ss secrets.SecretStore) *Bridge {
	return &Bridge{transport: t, configs: cs, secrets: ss}
}

// Register begins registration for phone. On success the CLI working
// directory is archived under the temp trust tier and the identity is
// pending verification.
func (b *Bridge) Register(ctx context.Context, phone string) error {
	dir, cleanup, err := workDir()
	if err != nil {
		return cliErr(FailInternal, "prepare work dir: %v", err)
	}
	defer cleanup()

	res, err := b.transport.Register(ctx, dir, phone)
	if err != nil {
		return cliErr(FailInternal, "invoke signal-cli: %v", err)
	}
	if res.TimedOut {
		return cliErr(FailTimeout, "Registration timeout")
	}
	if !res.OK() {
		return cliErr(FailCLI, "Registration failed: %s", res.Stderr)
	}

	blob, err := archive.PackDir(dir)
	if err != nil {
		return cliErr(FailInternal, "archive config: %v", err)
	}
	if err := b.configs.Save(ctx, archive.TempKey(phone), blob); err != nil {
		return cliErr(FailInternal, "store config: %v", err)
	}

	slog.Info("identity: registration initiated", "phone", phone)
	return nil
}

// Verify completes registration with the out-of-band code. On success the
// now-verified working directory replaces any archive under the verified
// tier and the phone number becomes the active sending identity. On any
// failure the identity stays pending and the secret is untouched.
func (b *Bridge) Verify(ctx context.Context, phone, code string) error {
	blob, err := b.configs.Load(ctx, archive.TempKey(phone))
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return cliErr(FailCLI, "No pending registration for %s", phone)
		}
		return cliErr(FailInternal, "restore config: %v", err)
	}

	dir, cleanup, err := workDir()
	if err != nil {
		return cliErr(FailInternal, "prepare work dir: %v", err)
	}
	defer cleanup()

	if err := archive.UnpackDir(blob, dir); err != nil {
		return cliErr(FailInternal, "unpack config: %v", err)
	}

	res, err := b.transport.Verify(ctx, dir, phone, code)
	if err != nil {
		return cliErr(FailInternal, "invoke signal-cli: %v", err)
	}
	if res.TimedOut {
		return cliErr(FailTimeout, "Verification timeout")
	}
	if !res.OK() {
		return cliErr(FailCLI, "Verification failed: %s", res.Stderr)
	}

	verified, err := archive.PackDir(dir)
	if err != nil {
		return cliErr(FailInternal, "archive verified config: %v", err)
	}
	if err := b.configs.Save(ctx, archive.VerifiedKey(phone), verified); err != nil {
		return cliErr(FailInternal, "store verified config: %v", err)
	}
	if err := b.secrets.Put(ctx, secrets.PhoneNumberKey, phone); err != nil {
		return cliErr(FailInternal, "record active identity: %v", err)
	}

	slog.Info("identity: verified", "phone", phone)
	return nil
}

// Send delivers message through the verified identity to a direct recipient
// or a group.
func (b *Bridge) Send(ctx context.Context, recipient, groupID, message string) error {
	phone, err := b.secrets.GetLatest(ctx, secrets.PhoneNumberKey)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return cliErr(FailNoIdentity, "No registered Signal number found")
		}
		return cliErr(FailInternal, "read active identity: %v", err)
	}

	blob, err := b.configs.Load(ctx, archive.VerifiedKey(phone))
	if err != nil {
		return cliErr(FailInternal, "restore verified config: %v", err)
	}

	dir, cleanup, err := workDir()
	if err != nil {
		return cliErr(FailInternal, "prepare work dir: %v", err)
	}
	defer cleanup()

	if err := archive.UnpackDir(blob, dir); err != nil {
		return cliErr(FailInternal, "unpack verified config: %v", err)
	}

	res, err := b.transport.Send(ctx, dir, phone, recipient, groupID, message)
	if err != nil {
		return cliErr(FailInternal, "invoke signal-cli: %v", err)
	}
	if res.TimedOut {
		return cliErr(FailTimeout, "Send timeout")
	}
	if !res.OK() {
		return cliErr(FailCLI, "Send failed: %s", res.Stderr)
	}

	slog.Info("identity: message sent", "recipient", recipient, "group_id", groupID)
	return nil
}

func workDir() (string, func(), error) {
	dir, err := os.MkdirTemp("", "signal-cli-*")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}
