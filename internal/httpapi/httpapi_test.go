package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvngu/signalstock/internal/archive"
	"github.com/mvngu/signalstock/internal/identity"
	"github.com/mvngu/signalstock/internal/secrets"
	"github.com/mvngu/signalstock/internal/signalcli"
)

type memConfigStore struct{ blobs map[string][]byte }

func (m *memConfigStore) Load(_ context.Context, key string) ([]byte, error) {
	b, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, archive.ErrNotFound)
	}
	return b, nil
}

func (m *memConfigStore) Save(_ context.Context, key string, data []byte) error {
	m.blobs[key] = data
	return nil
}

type memSecretStore struct{ values map[string]string }

func (m *memSecretStore) GetLatest(_ context.Context, name string) (string, error) {
	v, ok := m.values[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, secrets.ErrNotFound)
	}
	return v, nil
}

func (m *memSecretStore) Put(_ context.Context, name, value string) error {
	m.values[name] = value
	return nil
}

type stubRunner struct{ result signalcli.Result }

func (r *stubRunner) Run(_ context.Context, configDir string, _ ...string) (signalcli.Result, error) {
	os.WriteFile(filepath.Join(configDir, "account.db"), []byte("state"), 0600)
	return r.result, nil
}

func testBridge(result signalcli.Result) (*identity.Bridge, *memSecretStore) {
	secs := &memSecretStore{values: map[string]string{}}
	b := identity.NewBridge(
		signalcli.NewTransport(&stubRunner{result: result}),
		&memConfigStore{blobs: map[string][]byte{}},
		secs,
	)
	return b, secs
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRegistration_RegisterSuccess(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	h := NewRegistrationHandler(b)

	w := postJSON(t, h, `{"action":"register","phone_number":"+15551234"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "success" || resp["phone_number"] != "+15551234" {
		t.Errorf("response = %v", resp)
	}
}

func TestRegistration_MissingPhoneNumber(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	w := postJSON(t, NewRegistrationHandler(b), `{"action":"register"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegistration_InvalidAction(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	w := postJSON(t, NewRegistrationHandler(b), `{"action":"destroy","phone_number":"+1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegistration_VerifyBeforeRegister(t *testing.T) {
	b, secs := testBridge(signalcli.Result{ExitCode: 0})
	h := NewRegistrationHandler(b)

	w := postJSON(t, h, `{"action":"verify","phone_number":"+15551234","verification_code":"123-456"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if len(secs.values) != 0 {
		t.Error("failed verify must not write the phone secret")
	}
}

func TestRegistration_CLIFailure(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 1, Stderr: "captcha required"})
	w := postJSON(t, NewRegistrationHandler(b), `{"action":"register","phone_number":"+15551234"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "captcha required") {
		t.Errorf("CLI stderr missing from response: %s", w.Body.String())
	}
}

func TestRegistration_Timeout(t *testing.T) {
	b, _ := testBridge(signalcli.Result{TimedOut: true})
	w := postJSON(t, NewRegistrationHandler(b), `{"action":"register","phone_number":"+15551234"}`)
	if w.Code != http.StatusRequestTimeout {
		t.Errorf("status = %d, want 408", w.Code)
	}
}

func TestSender_RequiresMessageAndTarget(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	h := NewSenderHandler(b)

	if w := postJSON(t, h, `{"recipient":"+1"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing message: status = %d, want 400", w.Code)
	}
	if w := postJSON(t, h, `{"message":"hi"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing target: status = %d, want 400", w.Code)
	}
}

func TestSender_NoRegisteredNumber(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	w := postJSON(t, NewSenderHandler(b), `{"recipient":"+1","message":"hi"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No registered Signal number found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSender_FullFlow(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	reg := NewRegistrationHandler(b)

	postJSON(t, reg, `{"action":"register","phone_number":"+15551234"}`)
	postJSON(t, reg, `{"action":"verify","phone_number":"+15551234","verification_code":"123-456"}`)

	w := postJSON(t, NewSenderHandler(b), `{"recipient":"+15559999","message":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "success" {
		t.Errorf("response = %v", resp)
	}
}

func TestHealthEndpoints(t *testing.T) {
	b, _ := testBridge(signalcli.Result{ExitCode: 0})
	for _, h := range []http.Handler{NewRegistrationHandler(b), NewSenderHandler(b)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
			t.Errorf("health: status = %d, body = %s", w.Code, w.Body.String())
		}
	}
}
