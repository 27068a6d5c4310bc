// Package routing decides which backend language servers a request is offered
// to. Routing is deliberately coarse: both predicates key off the file type
// alone and never consult region boundaries, even though RegionAtPosition
// computes them precisely. Narrowing to region-exclusive routing would change
// observable behavior (for example which backend's hover wins inside a style
// block) and is intentionally not done here.
package routing

import (
	"path/filepath"
	"strings"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
	"github.com/datstarkey/svelte-proxy-lsp/src/parser"
)

// SvelteExtension is the composite language's own file suffix.
const SvelteExtension = ".svelte"

// scriptExtensions is the closed set of suffixes owned by the TypeScript
// backend outside of Svelte files.
var scriptExtensions = map[string]bool{
	".ts":  true,
	".js":  true,
	".tsx": true,
	".jsx": true,
}

// Decision is the pure result of routing one request: which backends to
// consult. It is never persisted.
type Decision struct {
	Svelte     bool
	TypeScript bool
}

// IsSvelteFile reports whether the URI's extension matches the composite
// language's file suffix.
func IsSvelteFile(uri string) bool {
	return ext(uri) == SvelteExtension
}

// IsScriptFile reports whether the URI carries one of the four scripting
// suffixes handled natively by the TypeScript backend.
func IsScriptFile(uri string) bool {
	return scriptExtensions[ext(uri)]
}

// UsesSvelteBackend reports whether the Svelte backend applies. Every request
// against a Svelte file is offered to the Svelte backend regardless of the
// cursor position; pos is accepted for signature symmetry only.
func UsesSvelteBackend(doc *parser.ParsedDocument, pos *types.Position) bool {
	if doc == nil {
		return false
	}
	return IsSvelteFile(doc.URI)
}

// UsesTypeScriptBackend reports whether the TypeScript backend applies at the
// file-type level. For Svelte files this is false; TypeScript participation
// for Svelte files comes from the always-both routing in Decide.
func UsesTypeScriptBackend(doc *parser.ParsedDocument, pos *types.Position) bool {
	if doc == nil {
		return false
	}
	return IsScriptFile(doc.URI)
}

// Decide yields the backend pair for a feature request. Svelte files are
// offered to both backends; script files only to the TypeScript backend.
func Decide(doc *parser.ParsedDocument, pos *types.Position) Decision {
	if doc == nil {
		return Decision{}
	}
	return DecideByURI(doc.URI)
}

// DecideByURI routes on the URI suffix alone, for requests that carry no
// position (workspace-wide symbol search) or no cached parse state.
func DecideByURI(uri string) Decision {
	if IsSvelteFile(uri) {
		return Decision{Svelte: true, TypeScript: true}
	}
	if IsScriptFile(uri) {
		return Decision{TypeScript: true}
	}
	return Decision{}
}

// RegionAtPosition returns the region containing pos, with priority
// script > moduleScript > style > template. Containment is inclusive on both
// ends. The template region is the unconditional fallback.
func RegionAtPosition(doc *parser.ParsedDocument, pos types.Position) *parser.DocumentRegion {
	if doc == nil {
		return nil
	}
	if doc.Script.Contains(pos) {
		return doc.Script
	}
	if doc.ModuleScript.Contains(pos) {
		return doc.ModuleScript
	}
	if doc.Style.Contains(pos) {
		return doc.Style
	}
	return &doc.Template
}

func ext(uri string) string {
	return strings.ToLower(filepath.Ext(strings.TrimPrefix(uri, "file://")))
}
