package types

// LSP protocol lifecycle methods
const (
	// MethodInitialize is sent as the first request from client to server
	MethodInitialize = "initialize"
	// MethodInitialized is sent from client to server after the initialize response
	MethodInitialized = "initialized"
	// MethodShutdown is sent from client to server to shutdown the server
	MethodShutdown = "shutdown"
	// MethodExit is sent from client to server to exit the server process
	MethodExit = "exit"
	// MethodCancelRequest cancels an in-flight request (accepted and ignored;
	// in-flight backend calls run to completion)
	MethodCancelRequest = "$/cancelRequest"
)

// LSP document synchronization methods
const (
	MethodTextDocumentDidOpen   = "textDocument/didOpen"
	MethodTextDocumentDidChange = "textDocument/didChange"
	MethodTextDocumentDidClose  = "textDocument/didClose"
	MethodTextDocumentDidSave   = "textDocument/didSave"
)

// LSP language feature methods
const (
	MethodTextDocumentCompletion         = "textDocument/completion"
	MethodCompletionItemResolve          = "completionItem/resolve"
	MethodTextDocumentHover              = "textDocument/hover"
	MethodTextDocumentSignatureHelp      = "textDocument/signatureHelp"
	MethodTextDocumentDefinition         = "textDocument/definition"
	MethodTextDocumentTypeDefinition     = "textDocument/typeDefinition"
	MethodTextDocumentImplementation     = "textDocument/implementation"
	MethodTextDocumentDeclaration        = "textDocument/declaration"
	MethodTextDocumentReferences         = "textDocument/references"
	MethodTextDocumentDocumentSymbol     = "textDocument/documentSymbol"
	MethodTextDocumentDocumentHighlight  = "textDocument/documentHighlight"
	MethodTextDocumentCodeAction         = "textDocument/codeAction"
	MethodTextDocumentCodeLens           = "textDocument/codeLens"
	MethodCodeLensResolve                = "codeLens/resolve"
	MethodTextDocumentFormatting         = "textDocument/formatting"
	MethodTextDocumentRename             = "textDocument/rename"
	MethodTextDocumentPrepareRename      = "textDocument/prepareRename"
	MethodTextDocumentFoldingRange       = "textDocument/foldingRange"
	MethodTextDocumentSelectionRange     = "textDocument/selectionRange"
	MethodTextDocumentPublishDiagnostics = "textDocument/publishDiagnostics"
)

// LSP workspace methods
const (
	MethodWorkspaceSymbol                 = "workspace/symbol"
	MethodWorkspaceDidChangeConfiguration = "workspace/didChangeConfiguration"
)
