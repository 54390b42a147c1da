package cli

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWaitForShutdown_EmptyUntilSignalled(t *testing.T) {
	sigChan := WaitForShutdown()
	if sigChan == nil {
		t.Fatal("WaitForShutdown() returned nil channel")
	}

	select {
	case sig := <-sigChan:
		t.Errorf("unexpected signal before delivery: %v", sig)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestWaitForShutdown_ReceivesSigterm(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping signal delivery in short mode")
	}

	sigChan := WaitForShutdown()

	go func() {
		time.Sleep(50 * time.Millisecond)
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(syscall.SIGTERM)
	}()

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGTERM {
			t.Errorf("signal = %v, want SIGTERM", sig)
		}
	case <-time.After(200 * time.Millisecond):
		t.Skip("signal not delivered within timeout")
	}
}
