// Package server wires the editor-facing LSP connection to the two backend
// language servers: it parses and caches open documents, routes each request
// to the applicable backend(s), and merges their responses into a single
// LSP-compliant reply.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	lsp "go.lsp.dev/protocol"

	"github.com/datstarkey/svelte-proxy-lsp/src/config"
	"github.com/datstarkey/svelte-proxy-lsp/src/internal/common"
	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
	"github.com/datstarkey/svelte-proxy-lsp/src/parser"
	"github.com/datstarkey/svelte-proxy-lsp/src/server/documents"
	"github.com/datstarkey/svelte-proxy-lsp/src/server/merge"
	"github.com/datstarkey/svelte-proxy-lsp/src/server/protocol"
	"github.com/datstarkey/svelte-proxy-lsp/src/server/routing"
)

// Proxy presents one unified LSP endpoint over two backend language servers.
type Proxy struct {
	svelte     types.BackendClient
	typescript types.BackendClient
	store      *documents.Store
	logger     common.Logger
	stream     *protocol.Stream

	writeMu sync.Mutex
	out     io.Writer

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewProxy creates a proxy over the configured backend pair. The TypeScript
// backend's initialization options are augmented with the
// typescript-svelte-plugin so tsserver resolves imports of .svelte files.
func NewProxy(cfg *config.Config, logger common.Logger) (*Proxy, error) {
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}
	logger = common.OrNop(logger)

	svelteCfg, ok := cfg.Backends[config.BackendSvelte]
	if !ok {
		return nil, fmt.Errorf("missing %s backend configuration", config.BackendSvelte)
	}
	tsCfg, ok := cfg.Backends[config.BackendTypeScript]
	if !ok {
		return nil, fmt.Errorf("missing %s backend configuration", config.BackendTypeScript)
	}

	svelteClient := NewBackendClient(types.ClientConfig{
		Command:               svelteCfg.Command,
		Args:                  svelteCfg.Args,
		WorkingDir:            svelteCfg.WorkingDir,
		InitializationOptions: svelteCfg.InitializationOptions,
	}, config.BackendSvelte, logger)

	tsClient := NewBackendClient(types.ClientConfig{
		Command:               tsCfg.Command,
		Args:                  tsCfg.Args,
		WorkingDir:            tsCfg.WorkingDir,
		InitializationOptions: withSveltePlugin(tsCfg.InitializationOptions),
	}, config.BackendTypeScript, logger)

	return newProxyWithClients(svelteClient, tsClient, logger), nil
}

// newProxyWithClients wires a proxy over pre-built backend clients. Tests use
// it to substitute in-memory backends.
func newProxyWithClients(svelte, typescript types.BackendClient, logger common.Logger) *Proxy {
	p := &Proxy{
		svelte:     svelte,
		typescript: typescript,
		store:      documents.NewStore(),
		logger:     common.OrNop(logger),
		stream:     protocol.NewStream("editor", logger),
		stopCh:     make(chan struct{}),
	}

	// Diagnostics are forwarded verbatim, per backend, never merged.
	for _, client := range []types.BackendClient{svelte, typescript} {
		client.OnNotification(types.MethodTextDocumentPublishDiagnostics, func(params json.RawMessage) {
			p.writeNotification(types.MethodTextDocumentPublishDiagnostics, params)
		})
	}

	return p
}

// withSveltePlugin injects the typescript-svelte-plugin entry into the
// TypeScript backend's initialization options, preserving anything the config
// already declares.
func withSveltePlugin(opts interface{}) interface{} {
	merged := map[string]interface{}{}
	if m, ok := opts.(map[string]interface{}); ok {
		for k, v := range m {
			merged[k] = v
		}
	}

	plugins, _ := merged["plugins"].([]interface{})
	for _, plugin := range plugins {
		if m, ok := plugin.(map[string]interface{}); ok && m["name"] == "typescript-svelte-plugin" {
			return merged
		}
	}
	merged["plugins"] = append(plugins, map[string]interface{}{"name": "typescript-svelte-plugin"})
	return merged
}

// Run serves the editor connection until EOF or an exit notification, then
// stops both backends.
func (p *Proxy) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	p.out = out

	readDone := make(chan error, 1)
	go func() {
		readDone <- p.stream.ReadLoop(in, p, p.stopCh)
	}()

	var err error
	select {
	case err = <-readDone:
	case <-ctx.Done():
		err = ctx.Err()
	case <-p.stopCh:
	}

	p.shutdown()
	return err
}

// shutdown stops both backends in parallel.
func (p *Proxy) shutdown() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	var wg sync.WaitGroup
	for _, client := range []types.BackendClient{p.svelte, p.typescript} {
		wg.Add(1)
		go func(c types.BackendClient) {
			defer wg.Done()
			if err := c.Stop(); err != nil {
				p.logger.Error("Error stopping backend: %v", err)
			}
		}(client)
	}
	wg.Wait()
}

// DocumentStore exposes the parse cache for status inspection.
func (p *Proxy) DocumentStore() *documents.Store {
	return p.store
}

// HandleRequest implements protocol.Handler for editor requests. Each request
// is served on its own goroutine so a slow backend round-trip does not stall
// document synchronization.
func (p *Proxy) HandleRequest(method string, id interface{}, params json.RawMessage) error {
	if method == types.MethodInitialize {
		// The handshake is the one request served synchronously: nothing else
		// is valid until it completes.
		p.handleInitialize(id, params)
		return nil
	}

	go p.dispatchRequest(method, id, params)
	return nil
}

// HandleNotification implements protocol.Handler for editor notifications.
func (p *Proxy) HandleNotification(method string, params json.RawMessage) error {
	ctx := context.Background()

	switch method {
	case types.MethodInitialized:
		// Each backend already received initialized inside Start; relaying
		// the editor's copy would deliver it a second time.
	case types.MethodTextDocumentDidOpen:
		p.handleDidOpen(ctx, params)
	case types.MethodTextDocumentDidChange:
		p.handleDidChange(ctx, params)
	case types.MethodTextDocumentDidClose:
		p.handleDidClose(ctx, params)
	case types.MethodTextDocumentDidSave:
		p.forwardLifecycle(ctx, types.MethodTextDocumentDidSave, params)
	case types.MethodWorkspaceDidChangeConfiguration:
		p.handleDidChangeConfiguration(ctx, params)
	case types.MethodExit:
		p.stopOnce.Do(func() { close(p.stopCh) })
	case types.MethodCancelRequest:
		// No cancellation propagation: in-flight backend calls run to
		// completion and their results go unused.
		p.logger.Debug("Ignoring %s", method)
	default:
		p.logger.Debug("Ignoring editor notification %s", method)
	}
	return nil
}

// HandleResponse implements protocol.Handler. The proxy never sends requests
// to the editor, so responses are unexpected.
func (p *Proxy) HandleResponse(id interface{}, result json.RawMessage, rpcErr *protocol.RPCError) error {
	p.logger.Debug("Unexpected response from editor: id=%v", id)
	return nil
}

// dispatchRequest routes one feature request and writes the reply.
func (p *Proxy) dispatchRequest(method string, id interface{}, params json.RawMessage) {
	ctx := context.Background()

	switch method {
	case types.MethodShutdown:
		p.writeResult(id, nil)

	case types.MethodTextDocumentCompletion:
		p.handleCompletion(ctx, id, params)

	case types.MethodTextDocumentDefinition,
		types.MethodTextDocumentTypeDefinition,
		types.MethodTextDocumentImplementation,
		types.MethodTextDocumentDeclaration,
		types.MethodTextDocumentReferences:
		p.handleLocations(ctx, method, id, params)

	case types.MethodWorkspaceSymbol:
		p.handleWorkspaceSymbol(ctx, id, params)

	case types.MethodTextDocumentDocumentSymbol:
		p.handleDocumentSymbol(ctx, id, params)

	case types.MethodTextDocumentHover:
		p.handleFirstWins(ctx, types.MethodTextDocumentHover, id, params, true)

	case types.MethodTextDocumentSignatureHelp,
		types.MethodTextDocumentRename,
		types.MethodTextDocumentPrepareRename,
		types.MethodTextDocumentFormatting:
		p.handleFirstWins(ctx, method, id, params, false)

	case types.MethodTextDocumentDocumentHighlight,
		types.MethodTextDocumentFoldingRange,
		types.MethodTextDocumentCodeAction,
		types.MethodTextDocumentCodeLens:
		p.handleConcat(ctx, method, id, params)

	case types.MethodTextDocumentSelectionRange:
		p.handleSelectionRange(ctx, id, params)

	case types.MethodCompletionItemResolve, types.MethodCodeLensResolve:
		p.handleResolve(ctx, method, id, params)

	default:
		p.writeError(id, protocol.NewMethodNotFoundError(method))
	}
}

// handleInitialize starts both backends concurrently, threading the editor's
// workspace root, folders and settings into each backend's own handshake. A
// unified server cannot meaningfully run with only one backend, so either
// failure surfaces upward.
func (p *Proxy) handleInitialize(id interface{}, params json.RawMessage) {
	ctx := context.Background()

	var init struct {
		RootURI               string                     `json:"rootUri"`
		RootPath              string                     `json:"rootPath"`
		WorkspaceFolders      json.RawMessage            `json:"workspaceFolders"`
		InitializationOptions map[string]json.RawMessage `json:"initializationOptions"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &init); err != nil {
			p.logger.Warn("Malformed initialize params: %v", err)
		}
	}

	// Editors commonly nest settings one level down under configuration.
	sections := init.InitializationOptions
	if raw, ok := sections["configuration"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			sections = nested
		}
	}
	svelteSettings, tsSettings := splitSettings(sections)

	session := func(settings map[string]interface{}) types.SessionParams {
		return types.SessionParams{
			RootURI:          init.RootURI,
			RootPath:         init.RootPath,
			WorkspaceFolders: init.WorkspaceFolders,
			Settings:         settings,
		}
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- p.svelte.Start(ctx, session(svelteSettings))
	}()
	go func() {
		errCh <- p.typescript.Start(ctx, session(tsSettings))
	}()
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			p.logger.Error("Backend initialization failed: %v", err)
			p.writeError(id, protocol.NewInternalError(err.Error()))
			return
		}
	}

	p.writeResult(id, map[string]interface{}{
		"capabilities": serverCapabilities(),
		"serverInfo": map[string]interface{}{
			"name":    "svelte-proxy-lsp",
			"version": "1.0.0",
		},
	})
}

// serverCapabilities is the static capability set advertised to the editor:
// the union of what the proxy knows how to route.
func serverCapabilities() map[string]interface{} {
	return map[string]interface{}{
		"textDocumentSync": map[string]interface{}{
			"openClose": true,
			"change":    1, // full document sync; parsing does no incremental diffing
			"save":      true,
		},
		"completionProvider": map[string]interface{}{
			"resolveProvider":   true,
			"triggerCharacters": []string{".", "\"", "'", "`", "/", "@", "<", "#", ":"},
		},
		"hoverProvider":              true,
		"definitionProvider":         true,
		"typeDefinitionProvider":     true,
		"implementationProvider":     true,
		"declarationProvider":        true,
		"referencesProvider":         true,
		"documentSymbolProvider":     true,
		"workspaceSymbolProvider":    true,
		"documentHighlightProvider":  true,
		"codeActionProvider":         true,
		"codeLensProvider":           map[string]interface{}{"resolveProvider": true},
		"documentFormattingProvider": true,
		"renameProvider":             map[string]interface{}{"prepareProvider": true},
		"foldingRangeProvider":       true,
		"selectionRangeProvider":     true,
		"signatureHelpProvider": map[string]interface{}{
			"triggerCharacters": []string{"(", ","},
		},
	}
}

// --- document synchronization -----------------------------------------------

// textDocumentParams extracts the fields common to feature requests; the full
// params travel onward to the backends untouched.
type textDocumentParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position *types.Position `json:"position,omitempty"`
}

func (p *Proxy) handleDidOpen(ctx context.Context, params json.RawMessage) {
	var open lsp.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &open); err != nil {
		p.logger.Warn("Malformed didOpen params: %v", err)
		return
	}

	p.store.Open(string(open.TextDocument.URI), open.TextDocument.Text, open.TextDocument.Version)
	p.forwardLifecycle(ctx, types.MethodTextDocumentDidOpen, params)
}

func (p *Proxy) handleDidChange(ctx context.Context, params json.RawMessage) {
	var change struct {
		TextDocument struct {
			URI     string `json:"uri"`
			Version int32  `json:"version"`
		} `json:"textDocument"`
		ContentChanges []struct {
			Text string `json:"text"`
		} `json:"contentChanges"`
	}
	if err := json.Unmarshal(params, &change); err != nil {
		p.logger.Warn("Malformed didChange params: %v", err)
		return
	}

	// Full sync: the last change carries the complete document text.
	if n := len(change.ContentChanges); n > 0 {
		p.store.Update(change.TextDocument.URI, change.ContentChanges[n-1].Text, change.TextDocument.Version)
	}
	p.forwardLifecycle(ctx, types.MethodTextDocumentDidChange, params)
}

func (p *Proxy) handleDidClose(ctx context.Context, params json.RawMessage) {
	var closed lsp.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &closed); err != nil {
		p.logger.Warn("Malformed didClose params: %v", err)
		return
	}

	p.store.Close(string(closed.TextDocument.URI))
	p.forwardLifecycle(ctx, types.MethodTextDocumentDidClose, params)
}

// forwardLifecycle sends a document synchronization notification to exactly
// one backend, chosen by file extension alone: Svelte files sync to the
// Svelte backend, script files to the TypeScript backend. This differs from
// feature requests, which may target both.
func (p *Proxy) forwardLifecycle(ctx context.Context, method string, params json.RawMessage) {
	var doc textDocumentParams
	if err := json.Unmarshal(params, &doc); err != nil {
		return
	}

	var target types.BackendClient
	switch {
	case routing.IsSvelteFile(doc.TextDocument.URI):
		target = p.svelte
	case routing.IsScriptFile(doc.TextDocument.URI):
		target = p.typescript
	default:
		return
	}

	if err := target.SendNotification(ctx, method, params); err != nil {
		p.logger.Warn("Failed to forward %s: %v", method, err)
	}
}

// handleDidChangeConfiguration rebuilds each backend's nested settings object
// and forwards it. Settings stay opaque: the proxy relays the sections each
// backend expects without interpreting them.
func (p *Proxy) handleDidChangeConfiguration(ctx context.Context, params json.RawMessage) {
	var change struct {
		Settings map[string]json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(params, &change); err != nil {
		p.logger.Warn("Malformed didChangeConfiguration params: %v", err)
		return
	}

	svelteSettings, tsSettings := splitSettings(change.Settings)

	p.notify(ctx, p.svelte, types.MethodWorkspaceDidChangeConfiguration,
		map[string]interface{}{"settings": svelteSettings})
	p.notify(ctx, p.typescript, types.MethodWorkspaceDidChangeConfiguration,
		map[string]interface{}{"settings": tsSettings})
}

// splitSettings partitions editor settings sections into the nested settings
// object each backend expects. Sections neither backend claims go to both.
func splitSettings(sections map[string]json.RawMessage) (svelte, typescript map[string]interface{}) {
	svelte = map[string]interface{}{}
	typescript = map[string]interface{}{}
	for section, value := range sections {
		switch section {
		case "svelte", "css", "html":
			svelte[section] = value
		case "typescript", "javascript":
			typescript[section] = value
		default:
			svelte[section] = value
			typescript[section] = value
		}
	}
	return svelte, typescript
}

// --- feature request handlers -----------------------------------------------

// lookup resolves the cached parse for a request's document. A nil result
// means the URI is unknown and the handler must answer with its empty shape
// immediately; unknown documents never trigger fallback parsing.
func (p *Proxy) lookup(params json.RawMessage) (*parser.ParsedDocument, *types.Position) {
	var doc textDocumentParams
	if err := json.Unmarshal(params, &doc); err != nil {
		return nil, nil
	}
	return p.store.Get(doc.TextDocument.URI), doc.Position
}

func (p *Proxy) handleCompletion(ctx context.Context, id interface{}, params json.RawMessage) {
	doc, pos := p.lookup(params)
	if doc == nil {
		p.writeResult(id, []interface{}{})
		return
	}

	raws := p.collect(ctx, types.MethodTextDocumentCompletion, params, p.candidates(doc, pos, true))
	p.writeResult(id, merge.Completions(raws...))
}

func (p *Proxy) handleLocations(ctx context.Context, method string, id interface{}, params json.RawMessage) {
	doc, pos := p.lookup(params)
	if doc == nil {
		p.writeResult(id, []interface{}{})
		return
	}

	raws := p.collect(ctx, method, params, p.candidates(doc, pos, true))
	p.writeResult(id, merge.Locations(raws...))
}

// handleWorkspaceSymbol consults both backends with the TypeScript backend
// ordered first, the one merge policy with that asymmetry.
func (p *Proxy) handleWorkspaceSymbol(ctx context.Context, id interface{}, params json.RawMessage) {
	candidates := []merge.Candidate{
		p.candidate(ctx, p.typescript, config.BackendTypeScript, types.MethodWorkspaceSymbol, params),
		p.candidate(ctx, p.svelte, config.BackendSvelte, types.MethodWorkspaceSymbol, params),
	}
	raws := p.collectCandidates(ctx, candidates)
	p.writeResult(id, merge.WorkspaceSymbols(raws...))
}

func (p *Proxy) handleDocumentSymbol(ctx context.Context, id interface{}, params json.RawMessage) {
	doc, _ := p.lookup(params)
	if doc == nil {
		p.writeResult(id, []interface{}{})
		return
	}

	// Svelte files are queried on both backends concurrently; the template
	// and script symbol sets are assumed disjoint, so no deduplication.
	raws := p.collect(ctx, types.MethodTextDocumentDocumentSymbol, params, p.candidates(doc, nil, true))
	p.writeResult(id, merge.Concat(raws...))
}

func (p *Proxy) handleConcat(ctx context.Context, method string, id interface{}, params json.RawMessage) {
	doc, pos := p.lookup(params)
	if doc == nil {
		p.writeResult(id, []interface{}{})
		return
	}

	raws := p.collect(ctx, method, params, p.candidates(doc, pos, true))
	p.writeResult(id, merge.Concat(raws...))
}

// handleFirstWins serves the "first successful wins" methods. Hover tries the
// backends in the routing decision's order (Svelte first for Svelte files);
// signature help, rename, prepare-rename and formatting try the TypeScript
// backend first.
func (p *Proxy) handleFirstWins(ctx context.Context, method string, id interface{}, params json.RawMessage, svelteFirst bool) {
	doc, pos := p.lookup(params)
	if doc == nil {
		p.writeResult(id, nil)
		return
	}

	ordered := p.orderedCandidates(ctx, method, params, p.candidates(doc, pos, svelteFirst))
	result := merge.FirstNonNull(ctx, ordered, func(backend string, err error) {
		p.logger.Warn("%s backend failed %s: %v", backend, method, err)
	})
	if result == nil {
		p.writeResult(id, nil)
		return
	}
	p.writeRaw(id, result)
}

// handleSelectionRange issues one sub-request per requested position,
// preserving input order, and concatenates the per-position results.
func (p *Proxy) handleSelectionRange(ctx context.Context, id interface{}, params json.RawMessage) {
	doc, _ := p.lookup(params)
	if doc == nil {
		p.writeResult(id, []interface{}{})
		return
	}

	var req struct {
		TextDocument json.RawMessage   `json:"textDocument"`
		Positions    []json.RawMessage `json:"positions"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		p.writeResult(id, []interface{}{})
		return
	}

	merged := make([]interface{}, 0, len(req.Positions))
	for _, pos := range req.Positions {
		sub, _ := json.Marshal(map[string]interface{}{
			"textDocument": req.TextDocument,
			"positions":    []json.RawMessage{pos},
		})
		raws := p.collect(ctx, types.MethodTextDocumentSelectionRange, sub, p.candidates(doc, nil, true))
		merged = append(merged, merge.Concat(raws...)...)
	}
	p.writeResult(id, merged)
}

// handleResolve serves completionItem/resolve and codeLens/resolve: the first
// backend whose resolution adds information wins, TypeScript backend first;
// otherwise the original item is echoed back unresolved.
func (p *Proxy) handleResolve(ctx context.Context, method string, id interface{}, params json.RawMessage) {
	for _, c := range []struct {
		client  types.BackendClient
		backend string
	}{
		{p.typescript, config.BackendTypeScript},
		{p.svelte, config.BackendSvelte},
	} {
		resolved, err := c.client.SendRequest(ctx, method, params)
		if err != nil {
			p.logger.Warn("%s backend failed %s: %v", c.backend, method, err)
			continue
		}
		if merge.AddsResolution(params, resolved) {
			p.writeRaw(id, resolved)
			return
		}
	}
	p.writeRaw(id, params)
}

// --- backend fan-out ---------------------------------------------------------

// candidates builds the ordered backend list for a routing decision. The
// fixed order is Svelte backend first unless svelteFirst is false.
func (p *Proxy) candidates(doc *parser.ParsedDocument, pos *types.Position, svelteFirst bool) []backendRef {
	decision := routing.Decide(doc, pos)

	var refs []backendRef
	if decision.Svelte {
		refs = append(refs, backendRef{p.svelte, config.BackendSvelte})
	}
	if decision.TypeScript {
		refs = append(refs, backendRef{p.typescript, config.BackendTypeScript})
	}
	if !svelteFirst {
		for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
			refs[i], refs[j] = refs[j], refs[i]
		}
	}
	return refs
}

type backendRef struct {
	client types.BackendClient
	name   string
}

func (p *Proxy) candidate(ctx context.Context, client types.BackendClient, backend, method string, params json.RawMessage) merge.Candidate {
	return merge.Candidate{
		Backend: backend,
		Call: func(ctx context.Context) (json.RawMessage, error) {
			return client.SendRequest(ctx, method, params)
		},
	}
}

func (p *Proxy) orderedCandidates(ctx context.Context, method string, params json.RawMessage, refs []backendRef) []merge.Candidate {
	candidates := make([]merge.Candidate, 0, len(refs))
	for _, ref := range refs {
		candidates = append(candidates, p.candidate(ctx, ref.client, ref.name, method, params))
	}
	return candidates
}

// collect fans one request out to every applicable backend concurrently and
// returns the raw payloads in the candidate order. Each backend call is
// independently fault-isolated: a failure contributes nil and is logged,
// never aborting the other backend's call.
func (p *Proxy) collect(ctx context.Context, method string, params json.RawMessage, refs []backendRef) []json.RawMessage {
	raws := make([]json.RawMessage, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref backendRef) {
			defer wg.Done()
			raw, err := ref.client.SendRequest(ctx, method, params)
			if err != nil {
				p.logger.Warn("%s backend failed %s: %v", ref.name, method, err)
				return
			}
			raws[i] = raw
		}(i, ref)
	}
	wg.Wait()

	return raws
}

// collectCandidates runs pre-built candidates concurrently, preserving order.
func (p *Proxy) collectCandidates(ctx context.Context, candidates []merge.Candidate) []json.RawMessage {
	raws := make([]json.RawMessage, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c merge.Candidate) {
			defer wg.Done()
			raw, err := c.Call(ctx)
			if err != nil {
				p.logger.Warn("%s backend failed: %v", c.Backend, err)
				return
			}
			raws[i] = raw
		}(i, c)
	}
	wg.Wait()

	return raws
}

func (p *Proxy) notify(ctx context.Context, client types.BackendClient, method string, params interface{}) {
	if err := client.SendNotification(ctx, method, params); err != nil {
		p.logger.Warn("Failed to forward %s: %v", method, err)
	}
}

// --- editor-facing writes ----------------------------------------------------

func (p *Proxy) writeResult(id interface{}, result interface{}) {
	if result == nil {
		// A success response must carry an explicit null result.
		result = json.RawMessage("null")
	}
	p.writeMessage(protocol.NewResponse(id, result, nil))
}

func (p *Proxy) writeRaw(id interface{}, result json.RawMessage) {
	p.writeMessage(protocol.NewResponse(id, result, nil))
}

func (p *Proxy) writeError(id interface{}, rpcErr *protocol.RPCError) {
	p.writeMessage(protocol.NewResponse(id, nil, rpcErr))
}

func (p *Proxy) writeNotification(method string, params json.RawMessage) {
	p.writeMessage(protocol.NewNotification(method, params))
}

func (p *Proxy) writeMessage(msg protocol.Message) {
	if p.out == nil {
		return
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.stream.WriteMessage(p.out, msg); err != nil {
		p.logger.Error("Failed to write message to editor: %v", err)
	}
}
