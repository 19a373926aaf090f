package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// SocketName is the session socket's file name under $XDG_RUNTIME_DIR.
const SocketName = "splconfig.sock"

// ErrAlreadyRunning means another session answers on the socket.
var ErrAlreadyRunning = errors.New("splconfig session already running")

// RuntimeSocketPath returns the session socket under $XDG_RUNTIME_DIR.
func RuntimeSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, SocketName), nil
}

// ClaimOptions bounds how hard Claim tries to take over an existing socket file.
type ClaimOptions struct {
	DialTimeout time.Duration
	Retries     int
	Backoff     time.Duration
}

// DefaultClaimOptions suits an interactive `run`.
var DefaultClaimOptions = ClaimOptions{DialTimeout: 180 * time.Millisecond, Retries: 8, Backoff: 25 * time.Millisecond}

// Claim makes this process the one session owning path. A socket file left by a
// dead session is removed; a live one yields ErrAlreadyRunning. A socket that
// accepts but never answers is left alone.
func Claim(ctx context.Context, path string, opts ClaimOptions) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}
	client := Client{Path: path, Timeout: opts.DialTimeout}

	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		if err == nil {
			_ = os.Chmod(path, 0o600)
			return listener, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		alive, checkErr := client.Alive(ctx)
		switch {
		case alive:
			return nil, ErrAlreadyRunning
		case checkErr != nil:
			return nil, fmt.Errorf("check existing socket %s: %w", path, checkErr)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}

		if attempt >= opts.Retries {
			return nil, fmt.Errorf("claim socket %s: gave up after %d retries", path, opts.Retries)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Backoff * time.Duration(attempt+1)):
		}
	}
}
