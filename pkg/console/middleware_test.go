package console

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/patchbay/pkg/command"
)

// MockIOHandler for testing middleware inputs/outputs
type MockIOHandler struct {
	SystemMessages []string
	Responses      [][]byte
	InputBehavior  func() (string, error)
}

func (m *MockIOHandler) ReadEnvelope(ctx context.Context) (string, error) {
	if m.InputBehavior != nil {
		return m.InputBehavior()
	}
	return "", nil
}

func (m *MockIOHandler) WriteResponse(ctx context.Context, resp []byte) error {
	m.Responses = append(m.Responses, resp)
	return nil
}

func (m *MockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.SystemMessages = append(m.SystemMessages, msg)
	return nil
}

func TestConfirmationMiddleware_Allow(t *testing.T) {
	mock := &MockIOHandler{
		InputBehavior: func() (string, error) { return "y", nil },
	}

	interceptor := ConfirmationMiddleware(mock)

	allowed, _, err := interceptor(context.Background(), "clear", []byte(`{"command":"clear"}`))
	if err != nil {
		t.Fatalf("Middleware error: %v", err)
	}
	if !allowed {
		t.Error("Expected command to be allowed with 'y'")
	}

	// Verify prompt was sent
	foundPrompt := false
	for _, msg := range mock.SystemMessages {
		if strings.Contains(msg, "Allow execution?") {
			foundPrompt = true
		}
	}
	if !foundPrompt {
		t.Error("Expected prompt message in output")
	}
}

func TestConfirmationMiddleware_Deny(t *testing.T) {
	mock := &MockIOHandler{
		InputBehavior: func() (string, error) { return "n", nil },
	}

	interceptor := ConfirmationMiddleware(mock)

	allowed, res, err := interceptor(context.Background(), "setState", nil)
	if err != nil {
		t.Fatalf("Middleware error: %v", err)
	}
	if allowed {
		t.Error("Expected command to be denied with 'n'")
	}
	if res.Success || res.Error != "operator denied execution by policy" {
		t.Errorf("Expected denial response, got: %+v", res)
	}
	if res.Code != CodeDenied {
		t.Errorf("Expected code %q, got %q", CodeDenied, res.Code)
	}
}

func TestConfirmationMiddleware_GuardsOnlyNamed(t *testing.T) {
	mock := &MockIOHandler{
		InputBehavior: func() (string, error) {
			t.Error("ReadEnvelope should not be called for unguarded commands")
			return "", nil
		},
	}

	interceptor := ConfirmationMiddleware(mock)

	allowed, _, err := interceptor(context.Background(), "getState", nil)
	if err != nil {
		t.Fatalf("Middleware error: %v", err)
	}
	if !allowed {
		t.Error("Expected unguarded command to pass without prompting")
	}
	if len(mock.SystemMessages) != 0 {
		t.Errorf("Expected no prompts, got %v", mock.SystemMessages)
	}
}

func TestBlockMiddleware(t *testing.T) {
	interceptor := BlockMiddleware("setState", "clear")

	allowed, res, _ := interceptor(context.Background(), "clear", nil)
	if allowed {
		t.Error("Expected 'clear' to be blocked")
	}
	if !strings.Contains(res.Error, "blocked by policy") {
		t.Errorf("Expected policy error, got: %+v", res)
	}

	allowed, _, _ = interceptor(context.Background(), "setInputLevel", nil)
	if !allowed {
		t.Error("Expected 'setInputLevel' to pass")
	}
}

func TestMultiInterceptor(t *testing.T) {
	// Chain: AutoApprove -> DenyAll -> AutoApprove
	// Should fail at DenyAll

	denyAll := func(ctx context.Context, name string, raw []byte) (bool, command.Response, error) {
		return false, command.Fail("Denied", CodeDenied), nil
	}

	chain := MultiInterceptor(AutoApproveMiddleware(), denyAll, AutoApproveMiddleware())

	allowed, res, _ := chain(context.Background(), "rename", nil)
	if allowed {
		t.Error("MultiInterceptor should stop at first denial")
	}
	if res.Error != "Denied" {
		t.Error("Expected denial result")
	}
}
