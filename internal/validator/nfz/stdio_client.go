package nfz

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/dmpetrovs/flightguard/internal/logging"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// StdioClient launches the NFZ tool server as a subprocess and exchanges
// newline-delimited JSON-RPC 2.0 messages over its stdin/stdout. The
// subprocess is started lazily on the first call and killed by Close.
//
// The pipeline is single-flight, but the client still correlates responses
// by request ID: the server may emit notifications between responses.
type StdioClient struct {
	mu sync.Mutex

	command string
	args    []string
	env     []string
	logger  logging.Logger

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	started bool
	closed  bool

	nextID   int
	pending  map[int]chan *rpcResponse
	readerWg sync.WaitGroup
}

// NewStdioClient builds a client for the given command line, e.g.
// "node /opt/openaip-nfz-server/index.js". extraEnv entries ("K=V") are
// appended to the current process environment.
func NewStdioClient(command string, extraEnv []string, logger logging.Logger) *StdioClient {
	parts := strings.Fields(command)
	var cmd string
	var args []string
	if len(parts) > 0 {
		cmd = parts[0]
		args = parts[1:]
	}
	return &StdioClient{
		command: cmd,
		args:    args,
		env:     extraEnv,
		logger:  logger,
		nextID:  1,
		pending: make(map[int]chan *rpcResponse),
	}
}

// start spawns the subprocess (under the lock) and then runs the initialize
// handshake with the lock released, since call() needs it to dispatch.
func (c *StdioClient) start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("client is closed")
	}
	if c.command == "" {
		c.mu.Unlock()
		return fmt.Errorf("empty NFZ server command")
	}

	cmd := exec.Command(c.command, c.args...)
	cmd.Env = append(os.Environ(), c.env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("start %s: %w", c.command, err)
	}

	c.cmd = cmd
	c.stdin = stdin
	c.started = true

	c.readerWg.Add(2)
	go c.readResponses(stdout)
	go c.relayStderr(stderr)
	c.mu.Unlock()

	if err := c.initialize(ctx); err != nil {
		return fmt.Errorf("initialize handshake: %w", err)
	}
	return nil
}

// initialize performs the handshake required before tools/call is accepted.
func (c *StdioClient) initialize(ctx context.Context) error {
	_, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]string{
			"name":    "flightguard",
			"version": "1.0.0",
		},
	})
	if err != nil {
		return err
	}

	// Fire-and-forget per protocol; the server expects this notification
	// after a successful initialize.
	note, _ := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"})
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stdin != nil {
		_, _ = c.stdin.Write(append(note, '\n'))
	}
	return nil
}

func (c *StdioClient) readResponses(stdout io.Reader) {
	defer c.readerWg.Done()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			c.logger.Warn(context.Background(), "unparsable line from NFZ server", "err", err)
			continue
		}
		if resp.ID == 0 {
			// Notification or server-initiated request; nothing waits on it.
			c.logger.Debug(context.Background(), "NFZ server notification", "line", string(line))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()

		if !ok {
			c.logger.Warn(context.Background(), "response for unknown request id", "id", resp.ID)
			continue
		}
		ch <- &resp
	}

	// EOF or read error: fail everything still in flight.
	c.mu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

func (c *StdioClient) relayStderr(stderr io.Reader) {
	defer c.readerWg.Done()
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		c.logger.Debug(context.Background(), "NFZ server stderr", "line", scanner.Text())
	}
}

func (c *StdioClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	if !c.started || c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("not connected to NFZ server")
	}

	id := c.nextID
	c.nextID++
	ch := make(chan *rpcResponse, 1)
	c.pending[id] = ch

	data, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if _, err := c.stdin.Write(append(data, '\n')); err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("write request: %w", err)
	}
	c.mu.Unlock()

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("NFZ server closed the connection")
		}
		if resp.Error != nil {
			return nil, &ToolError{Code: resp.Error.Code, Message: resp.Error.Message}
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// CallValidate connects if needed and invokes the validate-nfz tool once.
func (c *StdioClient) CallValidate(ctx context.Context, req Request) (any, error) {
	if err := c.start(ctx); err != nil {
		return nil, err
	}

	result, err := c.call(ctx, "tools/call", map[string]any{
		"name":      ToolName,
		"arguments": req,
	})
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("decode tool result: %w", err)
	}
	return payload, nil
}

// Close kills the subprocess and releases the pipes. Safe to call more than
// once and on a client that never connected.
func (c *StdioClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	if started && c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	c.mu.Unlock()

	if started {
		c.readerWg.Wait()
		_ = c.cmd.Wait()
	}
	return nil
}

var _ Invoker = (*StdioClient)(nil)
