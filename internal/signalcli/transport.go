package signalcli

import "context"

// Transport exposes the three signal-cli capabilities the pipeline needs.
// Each call is one synchronous subprocess invocation against configDir.
type Transport struct {
	runner Runner
}

// NewTransport wraps a runner.
func NewTransport(r Runner) *Transport {
	return &Transport{runner: r}
}

// Register begins registration for phone, triggering a verification code
// delivered by voice call (matching the original deployment).
func (t *Transport) Register(ctx context.Context, configDir, phone string) (Result, error) {
	return t.runner.Run(ctx, configDir, "register", "--voice", phone)
}

// Verify completes registration with the code received out of band.
func (t *Transport) Verify(ctx context.Context, configDir, phone, code string) (Result, error) {
	return t.runner.Run(ctx, configDir, "verify", phone, code)
}

// Send delivers message from account to either a direct recipient or a
// group. Exactly one of recipient/groupID should be set; when both are,
// the group wins (matching the original command construction).
func (t *Transport) Send(ctx context.Context, configDir, account, recipient, groupID, message string) (Result, error) {
	args := []string{"-a", account, "send"}
	if groupID != "" {
		args = append(args, "--group-id", groupID)
	} else {
		args = append(args, recipient)
	}
	args = append(args, "--message", message)
	return t.runner.Run(ctx, configDir, args...)
}
