package calendar_tools

import (
	"context"
	"strings"
	"testing"

	"github.com/sherpahq/sherpa/internal/server"
)

func TestGetCalendarClient_NoToken(t *testing.T) {
	ctx := context.Background()

	sc, err := server.NewServerContext(ctx, server.Config{}, nil)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	// Account names that cannot have a token file should produce the
	// authentication guidance rather than a transport error
	_, err = getCalendarClient(ctx, "no-such-test-account", sc)
	if err == nil {
		t.Fatal("expected error for unauthenticated account")
	}
	if !strings.Contains(err.Error(), "no-such-test-account") {
		t.Errorf("error should mention the account, got: %v", err)
	}
	if !strings.Contains(err.Error(), "auth google") {
		t.Errorf("error should point at the auth command, got: %v", err)
	}
}

func TestRegisterCalendarTools(t *testing.T) {
	// Verifies the registration entry points exist with the expected shape.
	_ = RegisterCalendarTools
	_ = RegisterEventTools
	_ = RegisterCalendarListTools
	_ = RegisterSchedulingTools
}
