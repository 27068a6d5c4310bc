// Package parser classifies the text of a Svelte component into typed regions
// (script, module script, style, template) with LSP position boundaries. It is
// a pure function over the document text: no I/O, no failure modes, malformed
// markup degrades to whole-document template classification.
package parser

import (
	"regexp"
	"strings"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
)

// RegionKind identifies the sub-language family a region belongs to.
type RegionKind string

const (
	RegionScript   RegionKind = "script"
	RegionStyle    RegionKind = "style"
	RegionTemplate RegionKind = "template"
)

// Default sub-language tags when a block carries no lang attribute.
const (
	DefaultScriptLang = "javascript"
	DefaultStyleLang  = "css"
)

// DocumentRegion is a classified span of a document's text. Start and End are
// zero-based line/UTF-16-character positions of the inner content, exclusive
// of the wrapping tags.
type DocumentRegion struct {
	Kind        RegionKind
	Start       types.Position
	End         types.Position
	Lang        string
	Text        string
	ModuleScope bool
}

// Contains reports whether pos falls within the region, inclusive on both ends.
func (r *DocumentRegion) Contains(pos types.Position) bool {
	if r == nil {
		return false
	}
	return (types.Range{Start: r.Start, End: r.End}).Contains(pos)
}

// ParsedDocument is the result of classifying one document version. Script,
// ModuleScript and Style are present only when the source declares them; the
// Template region always spans the entire document as the fallback
// classification, regardless of nested regions.
type ParsedDocument struct {
	URI          string
	Version      int32
	Script       *DocumentRegion
	ModuleScript *DocumentRegion
	Style        *DocumentRegion
	Template     DocumentRegion
}

var (
	scriptTagRe  = regexp.MustCompile(`(?is)<script(\s[^>]*)?>(.*?)</script>`)
	styleTagRe   = regexp.MustCompile(`(?is)<style(\s[^>]*)?>(.*?)</style>`)
	langAttrRe   = regexp.MustCompile(`(?i)lang\s*=\s*["']([^"']+)["']`)
	moduleCtxRe  = regexp.MustCompile(`(?i)context\s*=\s*["']module["']`)
	moduleAttrRe = regexp.MustCompile(`(?i)(^|\s)module(\s|$)`)
)

// Parse classifies content into regions. Identical input yields structurally
// identical output; the version is carried through untouched.
//
// Known limitations, preserved deliberately: only the first non-module script
// block and the first module script block are recognized (later ones are
// matched but dropped), and only the first style block is recognized.
func Parse(uri string, content string, version int32) *ParsedDocument {
	doc := &ParsedDocument{
		URI:      uri,
		Version:  version,
		Template: templateRegion(content),
	}

	for _, m := range scriptTagRe.FindAllStringSubmatchIndex(content, -1) {
		attrs := submatch(content, m, 1)
		text := submatch(content, m, 2)
		region := &DocumentRegion{
			Kind:        RegionScript,
			Start:       PositionAt(content, m[4]),
			End:         PositionAt(content, m[5]),
			Lang:        attrLang(attrs, DefaultScriptLang),
			Text:        text,
			ModuleScope: isModuleContext(attrs),
		}
		if region.ModuleScope {
			if doc.ModuleScript == nil {
				doc.ModuleScript = region
			}
		} else if doc.Script == nil {
			doc.Script = region
		}
	}

	// First style block only; later blocks are intentionally ignored.
	if m := styleTagRe.FindStringSubmatchIndex(content); m != nil {
		doc.Style = &DocumentRegion{
			Kind:  RegionStyle,
			Start: PositionAt(content, m[4]),
			End:   PositionAt(content, m[5]),
			Lang:  attrLang(submatch(content, m, 1), DefaultStyleLang),
			Text:  submatch(content, m, 2),
		}
	}

	return doc
}

// templateRegion builds the mandatory whole-document region.
func templateRegion(content string) DocumentRegion {
	return DocumentRegion{
		Kind:  RegionTemplate,
		Start: types.Position{Line: 0, Character: 0},
		End:   PositionAt(content, len(content)),
		Lang:  "svelte",
		Text:  content,
	}
}

// submatch returns the text of capture group n, or "" if it did not match.
func submatch(content string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return content[m[2*n]:m[2*n+1]]
}

// attrLang extracts a declared lang attribute, falling back to def.
func attrLang(attrs, def string) string {
	if m := langAttrRe.FindStringSubmatch(attrs); m != nil {
		return strings.ToLower(m[1])
	}
	return def
}

// isModuleContext detects a module-scope marker: context="module" in Svelte 4
// syntax or a bare module attribute in Svelte 5 syntax.
func isModuleContext(attrs string) bool {
	if moduleCtxRe.MatchString(attrs) {
		return true
	}
	return moduleAttrRe.MatchString(attrs)
}
