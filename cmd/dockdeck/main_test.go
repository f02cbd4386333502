package main

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestCheckDockerSocketAccessMissingPathIsNotFatal(t *testing.T) {
	if err := checkDockerSocketAccess(filepath.Join(t.TempDir(), "nope.sock")); err != nil {
		t.Errorf("missing socket should not be an error, got %v", err)
	}
}

func TestCheckDockerSocketAccessReadWrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "docker.sock")
	if err := os.WriteFile(p, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := checkDockerSocketAccess(p); err != nil {
		t.Errorf("rw file should be accessible, got %v", err)
	}

	if os.Getuid() == 0 {
		t.Skip("permission checks are meaningless as root")
	}
	if err := os.Chmod(p, 0o000); err != nil {
		t.Fatal(err)
	}
	if err := checkDockerSocketAccess(p); err == nil {
		t.Error("expected a permission error for an unreadable socket")
	}
}

func TestShutdownSignalDelivery(t *testing.T) {
	sig := make(chan os.Signal, 1)
	done := make(chan bool, 1)

	go func() {
		<-sig
		done <- true
	}()

	sig <- syscall.SIGTERM

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("signal handler did not receive signal")
	}
}
