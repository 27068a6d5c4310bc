package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
	"github.com/datstarkey/svelte-proxy-lsp/src/parser"
)

func TestIsSvelteFile(t *testing.T) {
	assert.True(t, IsSvelteFile("file:///app/Component.svelte"))
	assert.True(t, IsSvelteFile("file:///app/Component.SVELTE"))
	assert.False(t, IsSvelteFile("file:///app/util.ts"))
	assert.False(t, IsSvelteFile("file:///app/readme.md"))
}

func TestIsScriptFile(t *testing.T) {
	for _, uri := range []string{
		"file:///a.ts", "file:///a.js", "file:///a.tsx", "file:///a.jsx",
	} {
		assert.True(t, IsScriptFile(uri), uri)
	}
	assert.False(t, IsScriptFile("file:///a.svelte"))
	assert.False(t, IsScriptFile("file:///a.css"))
}

func TestBackendPredicates(t *testing.T) {
	svelte := parser.Parse("file:///a.svelte", "<h1>x</h1>", 1)
	script := parser.Parse("file:///a.ts", "let x = 1", 1)

	assert.True(t, UsesSvelteBackend(svelte, nil))
	assert.False(t, UsesSvelteBackend(script, nil))

	assert.False(t, UsesTypeScriptBackend(svelte, nil), "file-type predicate is false for svelte files")
	assert.True(t, UsesTypeScriptBackend(script, nil))

	// Position is accepted but never narrows the decision.
	pos := &types.Position{Line: 0, Character: 2}
	assert.True(t, UsesSvelteBackend(svelte, pos))
	assert.False(t, UsesSvelteBackend(nil, pos))
}

func TestDecide(t *testing.T) {
	svelte := parser.Parse("file:///a.svelte", "<h1>x</h1>", 1)
	script := parser.Parse("file:///a.tsx", "let x = 1", 1)

	assert.Equal(t, Decision{Svelte: true, TypeScript: true}, Decide(svelte, nil),
		"svelte files are offered to both backends")
	assert.Equal(t, Decision{TypeScript: true}, Decide(script, nil))
	assert.Equal(t, Decision{}, Decide(nil, nil))
	assert.Equal(t, Decision{}, DecideByURI("file:///a.txt"))
}

func TestRegionAtPosition_Priority(t *testing.T) {
	content := "<script>let n=1;</script>\n<h1>{n}</h1>\n<style>h1{}</style>"
	doc := parser.Parse("file:///a.svelte", content, 1)
	require.NotNil(t, doc.Script)
	require.NotNil(t, doc.Style)

	// Strictly inside the script span: script wins over the overlapping template.
	region := RegionAtPosition(doc, types.Position{Line: 0, Character: 10})
	assert.Equal(t, parser.RegionScript, region.Kind)

	// Inside the style span.
	region = RegionAtPosition(doc, types.Position{Line: 2, Character: 9})
	assert.Equal(t, parser.RegionStyle, region.Kind)

	// Markup between the blocks falls back to template.
	region = RegionAtPosition(doc, types.Position{Line: 1, Character: 2})
	assert.Equal(t, parser.RegionTemplate, region.Kind)
}

func TestRegionAtPosition_InclusiveBounds(t *testing.T) {
	content := "<script>ab</script>"
	doc := parser.Parse("file:///a.svelte", content, 1)
	require.NotNil(t, doc.Script)

	// Start and end positions are both contained.
	assert.Equal(t, parser.RegionScript, RegionAtPosition(doc, doc.Script.Start).Kind)
	assert.Equal(t, parser.RegionScript, RegionAtPosition(doc, doc.Script.End).Kind)

	// One character past the end belongs to the template.
	after := types.Position{Line: doc.Script.End.Line, Character: doc.Script.End.Character + 1}
	assert.Equal(t, parser.RegionTemplate, RegionAtPosition(doc, after).Kind)
}

func TestRegionAtPosition_ModuleScript(t *testing.T) {
	content := "<script context=\"module\">shared</script>\n<script>local</script>"
	doc := parser.Parse("file:///a.svelte", content, 1)
	require.NotNil(t, doc.ModuleScript)

	region := RegionAtPosition(doc, types.Position{Line: 0, Character: 28})
	assert.Equal(t, parser.RegionScript, region.Kind)
	assert.True(t, region.ModuleScope)
}
