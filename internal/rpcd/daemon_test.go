package rpcd

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/config"
)

func TestNewDefaultsBindAddr(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RPC.Host = ""
	cfg.RPC.Port = 0

	daemon, err := New(cfg, zerolog.Nop(), Options{Deps: testDeps(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := fmt.Sprintf("127.0.0.1:%d", DefaultPort)
	if got := daemon.bindAddr(); got != want {
		t.Fatalf("bindAddr() = %q, want %q", got, want)
	}
}

func TestNewUsesConfigAndOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RPC.Host = "0.0.0.0"
	cfg.RPC.Port = 6000

	daemon, err := New(cfg, zerolog.Nop(), Options{Port: 7000, Version: "1.2.3", Deps: testDeps(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := daemon.bindAddr(); got != "0.0.0.0:7000" {
		t.Fatalf("bindAddr() = %q, want 0.0.0.0:7000", got)
	}
	if got := daemon.Server().Version(); got != "1.2.3" {
		t.Fatalf("Version() = %q, want 1.2.3", got)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(nil, zerolog.Nop(), Options{}); err == nil {
		t.Fatal("New(nil) should fail")
	}
}

func TestRunReturnsOnCanceledContext(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RPC.Port = 0
	daemon, err := New(cfg, zerolog.Nop(), Options{Port: 50199, Deps: testDeps(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemon.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
