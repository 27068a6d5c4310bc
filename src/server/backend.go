package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/uri"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/common"
	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
	"github.com/datstarkey/svelte-proxy-lsp/src/server/process"
	"github.com/datstarkey/svelte-proxy-lsp/src/server/protocol"
)

// defaultRequestTimeout bounds one backend round-trip. The proxy layer above
// deliberately adds no timeout of its own.
const defaultRequestTimeout = 15 * time.Second

// pendingRequest stores delivery channels for one in-flight backend request.
type pendingRequest struct {
	respCh chan backendResponse
	done   chan struct{}
}

type backendResponse struct {
	result json.RawMessage
	err    *protocol.RPCError
}

// BackendClient implements LSP communication with one backend language server
// over stdio. It satisfies types.BackendClient.
type BackendClient struct {
	config  types.ClientConfig
	backend string // backend identifier for request IDs and log output
	logger  common.Logger

	processManager *process.Manager
	processInfo    *process.Info
	stream         *protocol.Stream
	session        types.SessionParams

	mu          sync.RWMutex
	writeMu     sync.Mutex
	active      bool
	initialized bool
	requests    map[string]*pendingRequest
	nextID      int

	handlersMu sync.RWMutex
	handlers   map[string][]func(params json.RawMessage)
}

// NewBackendClient creates a stdio client for one backend language server.
func NewBackendClient(config types.ClientConfig, backend string, logger common.Logger) *BackendClient {
	logger = common.OrNop(logger)
	return &BackendClient{
		config:         config,
		backend:        backend,
		logger:         logger,
		processManager: process.NewManager(logger),
		stream:         protocol.NewStream(backend, logger),
		requests:       make(map[string]*pendingRequest),
		handlers:       make(map[string][]func(params json.RawMessage)),
	}
}

// Start spawns the backend process and performs the initialize/initialized
// handshake rooted at the editor's workspace. Fails if already running.
func (c *BackendClient) Start(ctx context.Context, session types.SessionParams) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return fmt.Errorf("%s client already active", c.backend)
	}
	c.session = session
	c.mu.Unlock()

	info, err := c.processManager.Start(c.config, c.backend)
	if err != nil {
		return fmt.Errorf("failed to start %s backend: %w", c.backend, err)
	}
	c.processInfo = info
	info.Active = true

	go func() {
		if err := c.stream.ReadLoop(info.Stdout, c, info.StopCh); err != nil {
			if !info.IntentionalStop {
				c.logger.Error("Error reading %s backend stream: %v", c.backend, err)
			}
		}
	}()

	go c.logStderr()

	go c.processManager.Monitor(info, func(error) {
		c.mu.Lock()
		c.active = false
		c.initialized = false
		c.mu.Unlock()
	})

	c.mu.Lock()
	c.active = true
	c.mu.Unlock()

	if err := c.initialize(ctx); err != nil {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
		c.processManager.Cleanup(info)
		return fmt.Errorf("failed to initialize %s backend: %w", c.backend, err)
	}

	return nil
}

// Stop terminates the backend process with a graceful shutdown sequence.
func (c *BackendClient) Stop() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = false
	c.initialized = false
	c.mu.Unlock()

	return c.processManager.Stop(c.processInfo, c)
}

// SendRequest sends a JSON-RPC request and waits for the matching response.
func (c *BackendClient) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	c.mu.RLock()
	active, initialized := c.active, c.initialized
	processInfo := c.processInfo
	c.mu.RUnlock()

	if !active {
		return nil, fmt.Errorf("%s client not active", c.backend)
	}
	if !initialized && method != types.MethodInitialize {
		return nil, fmt.Errorf("%s client not initialized", c.backend)
	}

	c.mu.Lock()
	c.nextID++
	idVal := c.nextID
	id := fmt.Sprintf("%d", idVal)
	request := &pendingRequest{
		respCh: make(chan backendResponse, 1),
		done:   make(chan struct{}),
	}
	c.requests[id] = request
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.requests, id)
		c.mu.Unlock()
		close(request.done)
	}()

	msg := protocol.NewRequest(method, idVal, params)

	c.writeMu.Lock()
	writeErr := c.stream.WriteMessage(processInfo.Stdin, msg)
	c.writeMu.Unlock()
	if writeErr != nil {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to send %s request to %s backend: %w", method, c.backend, writeErr)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultRequestTimeout)
		defer cancel()
	}

	select {
	case resp := <-request.respCh:
		if resp.err != nil {
			return nil, fmt.Errorf("%s backend error for %s: %w", c.backend, method, resp.err)
		}
		return resp.result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s request to %s backend timed out: %w", method, c.backend, ctx.Err())
	case <-processInfo.StopCh:
		return nil, fmt.Errorf("%s backend stopped during %s request", c.backend, method)
	}
}

// SendNotification sends a JSON-RPC notification. When the client is not
// started this is a no-op with a warning.
func (c *BackendClient) SendNotification(ctx context.Context, method string, params interface{}) error {
	c.mu.RLock()
	active := c.active
	processInfo := c.processInfo
	c.mu.RUnlock()

	if !active {
		c.logger.Warn("Dropping %s notification: %s backend not active", method, c.backend)
		return nil
	}

	msg := protocol.NewNotification(method, params)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.stream.WriteMessage(processInfo.Stdin, msg)
}

// OnNotification registers a handler for server-initiated notifications of
// the given method. Multiple handlers per method are invoked in registration
// order.
func (c *BackendClient) OnNotification(method string, handler func(params json.RawMessage)) {
	c.handlersMu.Lock()
	c.handlers[method] = append(c.handlers[method], handler)
	c.handlersMu.Unlock()
}

// IsActive returns true if the backend process is running and initialized.
func (c *BackendClient) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active && c.initialized
}

// SendShutdownRequest implements process.ShutdownSender.
func (c *BackendClient) SendShutdownRequest(ctx context.Context) error {
	msg := protocol.NewRequest(types.MethodShutdown, 0, nil)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.stream.WriteMessage(c.processInfo.Stdin, msg)
}

// SendExitNotification implements process.ShutdownSender.
func (c *BackendClient) SendExitNotification(ctx context.Context) error {
	msg := protocol.NewNotification(types.MethodExit, nil)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.stream.WriteMessage(c.processInfo.Stdin, msg)
}

// HandleRequest implements protocol.Handler for backend-initiated requests.
// workspace/configuration gets an empty section per requested item; anything
// else gets an explicit null result so the backend never blocks on us.
func (c *BackendClient) HandleRequest(method string, id interface{}, params json.RawMessage) error {
	var result interface{}
	if method == "workspace/configuration" {
		var req struct {
			Items []interface{} `json:"items"`
		}
		sections := []interface{}{map[string]interface{}{}}
		if err := json.Unmarshal(params, &req); err == nil && len(req.Items) > 0 {
			sections = make([]interface{}, len(req.Items))
			for i := range sections {
				sections[i] = map[string]interface{}{}
			}
		}
		result = sections
	} else {
		result = json.RawMessage("null")
	}

	response := protocol.NewResponse(id, result, nil)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.stream.WriteMessage(c.processInfo.Stdin, response)
}

// HandleResponse implements protocol.Handler, delivering a response to the
// matching pending request.
func (c *BackendClient) HandleResponse(id interface{}, result json.RawMessage, rpcErr *protocol.RPCError) error {
	idStr := fmt.Sprintf("%v", id)

	c.mu.RLock()
	req, exists := c.requests[idStr]
	processInfo := c.processInfo
	c.mu.RUnlock()

	if !exists {
		c.logger.Debug("No matching request for %s backend response: id=%s", c.backend, idStr)
		return nil
	}

	select {
	case req.respCh <- backendResponse{result: result, err: rpcErr}:
	case <-req.done:
		c.logger.Debug("Request already completed when delivering %s response: id=%s", c.backend, idStr)
	case <-processInfo.StopCh:
	}
	return nil
}

// HandleNotification implements protocol.Handler, fanning backend-initiated
// notifications out to registered handlers.
func (c *BackendClient) HandleNotification(method string, params json.RawMessage) error {
	c.handlersMu.RLock()
	handlers := c.handlers[method]
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(params)
	}
	return nil
}

// initialize performs the LSP initialize request and the implicit initialized
// notification that follows a successful response. The workspace root and
// folders come from the editor's own initialize params when present; the
// backend must index the workspace the editor opened, not wherever the proxy
// process happens to run.
func (c *BackendClient) initialize(ctx context.Context) error {
	rootURI := c.session.RootURI
	rootPath := c.session.RootPath
	if rootURI == "" {
		wd := c.config.WorkingDir
		if wd == "" {
			var err error
			if wd, err = os.Getwd(); err != nil {
				wd = "/tmp"
			}
		}
		wd, _ = filepath.Abs(wd)
		rootURI = string(uri.File(wd))
		rootPath = wd
	}
	if rootPath == "" {
		rootPath = strings.TrimPrefix(rootURI, "file://")
	}

	var workspaceFolders interface{}
	if len(c.session.WorkspaceFolders) > 0 && string(c.session.WorkspaceFolders) != "null" {
		workspaceFolders = c.session.WorkspaceFolders
	} else {
		workspaceFolders = []map[string]interface{}{
			{
				"uri":  rootURI,
				"name": filepath.Base(rootPath),
			},
		}
	}

	initParams := map[string]interface{}{
		"processId": os.Getpid(),
		"clientInfo": map[string]interface{}{
			"name":    "svelte-proxy-lsp",
			"version": "1.0.0",
		},
		"rootUri":               rootURI,
		"rootPath":              rootPath,
		"workspaceFolders":      workspaceFolders,
		"initializationOptions": c.initializationOptions(),
		"capabilities": map[string]interface{}{
			"workspace": map[string]interface{}{
				"configuration":          true,
				"workspaceFolders":       true,
				"didChangeConfiguration": map[string]interface{}{"dynamicRegistration": true},
				"symbol":                 map[string]interface{}{"dynamicRegistration": true},
			},
			"textDocument": map[string]interface{}{
				"publishDiagnostics": map[string]interface{}{
					"relatedInformation": true,
					"versionSupport":     false,
				},
				"synchronization": map[string]interface{}{
					"dynamicRegistration": true,
					"didSave":             true,
				},
				"completion": map[string]interface{}{
					"contextSupport": true,
					"completionItem": map[string]interface{}{
						"snippetSupport":      true,
						"documentationFormat": []string{"markdown", "plaintext"},
					},
				},
				"hover": map[string]interface{}{
					"contentFormat": []string{"markdown", "plaintext"},
				},
				"definition":        map[string]interface{}{"linkSupport": true},
				"references":        map[string]interface{}{},
				"documentSymbol":    map[string]interface{}{"hierarchicalDocumentSymbolSupport": true},
				"documentHighlight": map[string]interface{}{},
				"codeAction": map[string]interface{}{
					"codeActionLiteralSupport": map[string]interface{}{
						"codeActionKind": map[string]interface{}{
							"valueSet": []string{"", "quickfix", "refactor", "source", "source.organizeImports"},
						},
					},
				},
				"formatting":     map[string]interface{}{},
				"rename":         map[string]interface{}{"prepareSupport": true},
				"foldingRange":   map[string]interface{}{},
				"selectionRange": map[string]interface{}{},
				"signatureHelp": map[string]interface{}{
					"signatureInformation": map[string]interface{}{
						"documentationFormat": []string{"markdown", "plaintext"},
					},
				},
			},
		},
		"trace": "off",
	}

	if _, err := c.SendRequest(ctx, types.MethodInitialize, initParams); err != nil {
		return err
	}

	if err := c.SendNotification(ctx, types.MethodInitialized, map[string]interface{}{}); err != nil {
		c.logger.Error("Failed to send initialized notification to %s backend: %v", c.backend, err)
		return err
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// initializationOptions merges the backend's configured options with the
// editor-supplied settings sections for this backend, nested under the
// configuration key both backends read at startup.
func (c *BackendClient) initializationOptions() interface{} {
	if len(c.session.Settings) == 0 {
		return c.config.InitializationOptions
	}

	merged := map[string]interface{}{}
	if m, ok := c.config.InitializationOptions.(map[string]interface{}); ok {
		for k, v := range m {
			merged[k] = v
		}
	}
	merged["configuration"] = c.session.Settings
	return merged
}

// logStderr drains the backend's stderr, surfacing error-looking lines.
func (c *BackendClient) logStderr() {
	info := c.processInfo
	if info == nil || info.Stderr == nil {
		return
	}

	scanner := bufio.NewScanner(info.Stderr)
	for scanner.Scan() {
		select {
		case <-info.StopCh:
			return
		default:
		}

		line := scanner.Text()
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "fatal") || strings.Contains(lower, "exception") {
			c.logger.Error("%s backend stderr: %s", c.backend, line)
		} else {
			c.logger.Debug("%s backend stderr: %s", c.backend, line)
		}
	}
}
