package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func serveForTest(t *testing.T, socketPath string, handler func(context.Context, Request) Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Server{Handler: HandlerFunc(handler), ReadTimeout: time.Second}.Serve(ctx, listener)
	}()
	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func rawExchange(t *testing.T, socketPath, line string) Response {
	t.Helper()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(line))
	require.NoError(t, err)
	reply, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(reply, &resp))
	return resp
}

func TestClientDoRoundTrip(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	stop := serveForTest(t, socketPath, func(_ context.Context, req Request) Response {
		if req.Command != CommandSelect {
			return Failure(context.Canceled)
		}
		return Response{OK: true, State: "normal", Profile: req.Profile}
	})
	defer stop()

	client := Client{Path: socketPath, Timeout: 200 * time.Millisecond}
	resp, err := client.Do(context.Background(), Request{Command: CommandSelect, Profile: "Morning show"})
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	require.Equal(t, "Morning show", resp.Profile)

	resp, err = client.Do(context.Background(), Request{Command: CommandStatus})
	require.NoError(t, err)
	require.False(t, resp.OK)
	require.EqualError(t, resp.Err(), context.Canceled.Error())
}

func TestClientDoDecodeResponseError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()
		_, _ = bufio.NewReader(conn).ReadBytes('\n')
		_, _ = conn.Write([]byte("not-json\n"))
	}()

	_, err = Client{Path: socketPath, Timeout: 200 * time.Millisecond}.Do(context.Background(), Request{Command: CommandStatus})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode status response")
}

func TestClientDoReadResponseError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		_ = conn.Close()
	}()

	_, err = Client{Path: socketPath, Timeout: 200 * time.Millisecond}.Do(context.Background(), Request{Command: CommandStatus})
	require.Error(t, err)
	require.Contains(t, err.Error(), "read status response")
}

func TestServerRejectsMalformedRequests(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	calls := 0
	stop := serveForTest(t, socketPath, func(_ context.Context, _ Request) Response {
		calls++
		return Response{OK: true}
	})
	defer stop()

	resp := rawExchange(t, socketPath, "not-json\n")
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "decode request")

	resp = rawExchange(t, socketPath, "{\"command\":\"  \"}\n")
	require.False(t, resp.OK)
	require.Equal(t, "request has no command", resp.Error)

	require.Zero(t, calls)
}

func TestServerTimesOutSilentClients(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Server{Handler: HandlerFunc(func(context.Context, Request) Response { return Response{OK: true} }), ReadTimeout: 50 * time.Millisecond}.Serve(ctx, listener)
	}()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	reply, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal(reply, &resp))
	require.Contains(t, resp.Error, "read request")

	cancel()
	require.NoError(t, <-done)
}

func TestClientAlive(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)
	stop := serveForTest(t, socketPath, func(_ context.Context, req Request) Response {
		return Response{OK: req.Command == CommandStatus, State: "normal"}
	})

	client := Client{Path: socketPath, Timeout: 200 * time.Millisecond}
	alive, err := client.Alive(context.Background())
	require.NoError(t, err)
	require.True(t, alive)

	stop()

	alive, err = client.Alive(context.Background())
	require.NoError(t, err)
	require.False(t, alive)
}

func TestResponseErr(t *testing.T) {
	require.NoError(t, Response{OK: true}.Err())
	require.EqualError(t, Response{}.Err(), "session reported failure")
	require.EqualError(t, Response{Error: "boom"}.Err(), "boom")
}
