package signalcli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// writeScript drops an executable shell script standing in for signal-cli.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-cli")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecRunner_Success(t *testing.T) {
	r := NewExecRunner(writeScript(t, `echo "out"; echo "err" >&2; exit 0`))
	res, err := r.Run(context.Background(), t.TempDir(), "register", "+15551234")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.OK() {
		t.Errorf("result not OK: %+v", res)
	}
	if res.Stdout != "out\n" || res.Stderr != "err\n" {
		t.Errorf("stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := NewExecRunner(writeScript(t, `echo "captcha required" >&2; exit 2`))
	res, err := r.Run(context.Background(), t.TempDir(), "register", "+15551234")
	if err != nil {
		t.Fatalf("non-zero exit must not be a Go error, got %v", err)
	}
	if res.OK() {
		t.Error("result should not be OK")
	}
	if res.ExitCode != 2 {
		t.Errorf("exit code = %d, want 2", res.ExitCode)
	}
	if res.Stderr != "captcha required\n" {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := r.Run(context.Background(), t.TempDir(), "send"); err == nil {
		t.Error("missing binary should surface an internal fault")
	}
}

// fakeRunner records the argument vector it was invoked with.
type fakeRunner struct {
	configDir string
	args      []string
	result    Result
}

func (f *fakeRunner) Run(_ context.Context, configDir string, args ...string) (Result, error) {
	f.configDir = configDir
	f.args = args
	return f.result, nil
}

func TestTransport_ArgumentVectors(t *testing.T) {
	tests := []struct {
		name string
		call func(tr *Transport) (Result, error)
		want []string
	}{
		{
			name: "register uses voice verification",
			call: func(tr *Transport) (Result, error) {
				return tr.Register(context.Background(), "/cfg", "+15551234")
			},
			want: []string{"register", "--voice", "+15551234"},
		},
		{
			name: "verify passes phone and code",
			call: func(tr *Transport) (Result, error) {
				return tr.Verify(context.Background(), "/cfg", "+15551234", "123-456")
			},
			want: []string{"verify", "+15551234", "123-456"},
		},
		{
			name: "direct send targets the recipient",
			call: func(tr *Transport) (Result, error) {
				return tr.Send(context.Background(), "/cfg", "+15550000", "+15551234", "", "hi")
			},
			want: []string{"-a", "+15550000", "send", "+15551234", "--message", "hi"},
		},
		{
			name: "group send uses the group flag",
			call: func(tr *Transport) (Result, error) {
				return tr.Send(context.Background(), "/cfg", "+15550000", "", "grp==", "hi")
			},
			want: []string{"-a", "+15550000", "send", "--group-id", "grp==", "--message", "hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRunner{}
			if _, err := tt.call(NewTransport(fr)); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if len(fr.args) != len(tt.want) {
				t.Fatalf("args = %v, want %v", fr.args, tt.want)
			}
			for i := range tt.want {
				if fr.args[i] != tt.want[i] {
					t.Errorf("args[%d] = %q, want %q", i, fr.args[i], tt.want[i])
				}
			}
			if fr.configDir != "/cfg" {
				t.Errorf("configDir = %q", fr.configDir)
			}
		})
	}
}
