package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
)

const sampleComponent = "<script lang=\"ts\">let n=1;</script>\n<h1>{n}</h1>\n<style>h1{color:red}</style>"

func TestParse_BasicComponent(t *testing.T) {
	doc := Parse("file:///a.svelte", sampleComponent, 1)

	require.NotNil(t, doc.Script, "script region should be recognized")
	assert.Equal(t, "ts", doc.Script.Lang)
	assert.Equal(t, "let n=1;", doc.Script.Text)
	assert.False(t, doc.Script.ModuleScope)
	assert.Nil(t, doc.ModuleScript)

	require.NotNil(t, doc.Style, "style region should be recognized")
	assert.Equal(t, "css", doc.Style.Lang, "style without lang attribute defaults to css")
	assert.Equal(t, "h1{color:red}", doc.Style.Text)

	assert.Equal(t, sampleComponent, doc.Template.Text, "template always spans the whole document")
	assert.Equal(t, types.Position{Line: 0, Character: 0}, doc.Template.Start)
	assert.Equal(t, "file:///a.svelte", doc.URI)
	assert.Equal(t, int32(1), doc.Version)
}

func TestParse_Idempotent(t *testing.T) {
	a := Parse("file:///a.svelte", sampleComponent, 3)
	b := Parse("file:///a.svelte", sampleComponent, 3)
	assert.Equal(t, a, b, "identical input must produce structurally identical output")
}

func TestParse_TemplateFallback(t *testing.T) {
	content := "<h1>hello</h1>\n<p>plain markup only</p>"
	doc := Parse("file:///b.svelte", content, 1)

	assert.Nil(t, doc.Script)
	assert.Nil(t, doc.ModuleScript)
	assert.Nil(t, doc.Style)
	assert.Equal(t, content, doc.Template.Text)
}

func TestParse_ModuleScriptSeparation(t *testing.T) {
	content := `<script context="module">export const shared = 1;</script>
<script>let local = 2;</script>
<h1>hi</h1>`
	doc := Parse("file:///c.svelte", content, 1)

	require.NotNil(t, doc.ModuleScript)
	require.NotNil(t, doc.Script)
	assert.True(t, doc.ModuleScript.ModuleScope)
	assert.Equal(t, "export const shared = 1;", doc.ModuleScript.Text)
	assert.Equal(t, "let local = 2;", doc.Script.Text)
	assert.NotEqual(t, doc.Script.Text, doc.ModuleScript.Text)
}

func TestParse_Svelte5ModuleAttribute(t *testing.T) {
	content := `<script module>export const shared = 1;</script><p>x</p>`
	doc := Parse("file:///c.svelte", content, 1)

	require.NotNil(t, doc.ModuleScript)
	assert.Nil(t, doc.Script)
	assert.True(t, doc.ModuleScript.ModuleScope)
}

func TestParse_SecondScriptBlockDropped(t *testing.T) {
	content := `<script>let a = 1;</script>
<script>let b = 2;</script>`
	doc := Parse("file:///d.svelte", content, 1)

	require.NotNil(t, doc.Script)
	assert.Equal(t, "let a = 1;", doc.Script.Text, "only the first plain script block is kept")
}

func TestParse_FirstStyleBlockWins(t *testing.T) {
	content := `<style>h1{}</style><style lang="scss">h2{}</style>`
	doc := Parse("file:///e.svelte", content, 1)

	require.NotNil(t, doc.Style)
	assert.Equal(t, "h1{}", doc.Style.Text)
	assert.Equal(t, "css", doc.Style.Lang)
}

func TestParse_StyleLangAttribute(t *testing.T) {
	doc := Parse("file:///f.svelte", `<style lang="scss">h1{}</style>`, 1)
	require.NotNil(t, doc.Style)
	assert.Equal(t, "scss", doc.Style.Lang)
}

func TestParse_RegionPositions(t *testing.T) {
	doc := Parse("file:///a.svelte", sampleComponent, 1)

	// "<script lang=\"ts\">" is 18 characters, content on line 0.
	require.NotNil(t, doc.Script)
	assert.Equal(t, types.Position{Line: 0, Character: 18}, doc.Script.Start)
	assert.Equal(t, types.Position{Line: 0, Character: 26}, doc.Script.End)

	// style content sits on line 2 after "<style>".
	require.NotNil(t, doc.Style)
	assert.Equal(t, types.Position{Line: 2, Character: 7}, doc.Style.Start)
	assert.Equal(t, types.Position{Line: 2, Character: 20}, doc.Style.End)
}

func TestParse_MalformedMarkup(t *testing.T) {
	content := `<script>unterminated`
	doc := Parse("file:///g.svelte", content, 1)

	assert.Nil(t, doc.Script, "unterminated tags fail to match and are treated as absent")
	assert.Equal(t, content, doc.Template.Text)
}

func TestPositionAt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		offset  int
		want    types.Position
	}{
		{"start", "abc", 0, types.Position{Line: 0, Character: 0}},
		{"same line", "abc\ndef", 2, types.Position{Line: 0, Character: 2}},
		{"after newline", "abc\ndef", 4, types.Position{Line: 1, Character: 0}},
		{"second line middle", "abc\ndef", 6, types.Position{Line: 1, Character: 2}},
		{"end of content", "abc\ndef", 7, types.Position{Line: 1, Character: 3}},
		{"clamped past end", "ab", 10, types.Position{Line: 0, Character: 2}},
		{"astral plane counts two units", "\U0001F600x", 5, types.Position{Line: 0, Character: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositionAt(tt.content, tt.offset))
		})
	}
}
