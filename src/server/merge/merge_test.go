package merge

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func TestItems(t *testing.T) {
	assert.Nil(t, Items(nil))
	assert.Nil(t, Items(json.RawMessage("null")))

	arr := Items(json.RawMessage(`[{"a":1},{"b":2}]`))
	assert.Len(t, arr, 2)

	// CompletionList wrapper is unwrapped to its items.
	wrapped := Items(json.RawMessage(`{"isIncomplete":false,"items":[{"label":"x"}]}`))
	require.Len(t, wrapped, 1)

	// A single bare object becomes a one-element list.
	single := Items(json.RawMessage(`{"uri":"file:///a.ts"}`))
	assert.Len(t, single, 1)
}

func TestCompletions_MergeScenario(t *testing.T) {
	svelte := json.RawMessage(`[{"label":"foo","kind":1}]`)
	typescript := json.RawMessage(`[{"label":"foo","kind":1},{"label":"bar","kind":3}]`)

	merged := Completions(svelte, typescript)
	require.Len(t, merged, 2, "foo must be deduplicated")

	first := merged[0].(map[string]interface{})
	second := merged[1].(map[string]interface{})
	assert.Equal(t, "foo", first["label"])
	assert.Equal(t, "bar", second["label"])
}

func TestCompletions_DetailCoercion(t *testing.T) {
	// A missing detail and an empty detail produce the same key.
	a := json.RawMessage(`[{"label":"foo","kind":1}]`)
	b := json.RawMessage(`[{"label":"foo","kind":1,"detail":""}]`)

	merged := Completions(a, b)
	assert.Len(t, merged, 1)

	// Distinct details survive.
	c := json.RawMessage(`[{"label":"foo","kind":1,"detail":"module"}]`)
	merged = Completions(a, c)
	assert.Len(t, merged, 2)
}

func TestCompletions_DedupIdempotent(t *testing.T) {
	lists := []json.RawMessage{
		json.RawMessage(`[{"label":"a","kind":1},{"label":"b","kind":2}]`),
	}
	once := Completions(lists...)
	twice := Completions(raw(once))
	assert.Equal(t, once, twice, "deduplicating an already-deduplicated list must not shrink it")
}

func TestCompletions_WrapperUnwrap(t *testing.T) {
	svelte := json.RawMessage(`{"isIncomplete":true,"items":[{"label":"on:click","kind":5}]}`)
	typescript := json.RawMessage(`[{"label":"onClick","kind":3}]`)

	merged := Completions(svelte, typescript)
	require.Len(t, merged, 2)
	assert.Equal(t, "on:click", merged[0].(map[string]interface{})["label"], "svelte backend order is preserved")
}

func TestLocations(t *testing.T) {
	a := json.RawMessage(`[{"uri":"file:///a.ts","range":{"start":{"line":1,"character":2},"end":{"line":1,"character":5}}}]`)
	b := json.RawMessage(`[
		{"uri":"file:///a.ts","range":{"start":{"line":1,"character":2},"end":{"line":1,"character":9}}},
		{"uri":"file:///b.ts","range":{"start":{"line":1,"character":2},"end":{"line":1,"character":5}}}
	]`)

	merged := Locations(a, b)
	require.Len(t, merged, 2, "same uri+start dedups even when ends differ")
	assert.Equal(t, "file:///a.ts", merged[0].(map[string]interface{})["uri"])
	assert.Equal(t, "file:///b.ts", merged[1].(map[string]interface{})["uri"])
}

func TestLocations_SingleObjectResponse(t *testing.T) {
	single := json.RawMessage(`{"uri":"file:///a.ts","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}}}`)
	merged := Locations(single, nil)
	assert.Len(t, merged, 1)
}

func TestLocations_LocationLinks(t *testing.T) {
	links := json.RawMessage(`[
		{"targetUri":"file:///a.ts","targetRange":{"start":{"line":3,"character":0},"end":{"line":3,"character":4}}},
		{"targetUri":"file:///a.ts","targetRange":{"start":{"line":3,"character":0},"end":{"line":9,"character":0}}}
	]`)
	merged := Locations(links)
	assert.Len(t, merged, 1)
}

func TestWorkspaceSymbols(t *testing.T) {
	ts := json.RawMessage(`[{"name":"load","kind":12,"location":{"uri":"file:///a.ts","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":4}}}}]`)
	svelte := json.RawMessage(`[
		{"name":"load","kind":12,"location":{"uri":"file:///a.ts","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":4}}}},
		{"name":"load","kind":12,"location":{"uri":"file:///b.svelte","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":4}}}}
	]`)

	merged := WorkspaceSymbols(ts, svelte)
	require.Len(t, merged, 2)
	assert.Equal(t, "file:///a.ts", merged[0].(map[string]interface{})["location"].(map[string]interface{})["uri"])
}

func TestConcat_NoDedup(t *testing.T) {
	a := json.RawMessage(`[{"name":"App","kind":5}]`)
	b := json.RawMessage(`[{"name":"App","kind":5}]`)
	assert.Len(t, Concat(a, b), 2, "document symbols are concatenated without deduplication")
}

func TestConcat_FailureIsolation(t *testing.T) {
	// A failing backend contributes a nil payload; the other's items survive.
	ok := json.RawMessage(`[{"label":"A"},{"label":"B"}]`)
	merged := Concat(nil, ok)
	require.Len(t, merged, 2)
	assert.Equal(t, "A", merged[0].(map[string]interface{})["label"])
}

func TestFirstNonNull(t *testing.T) {
	calls := []string{}
	candidates := []Candidate{
		{Backend: "typescript", Call: func(ctx context.Context) (json.RawMessage, error) {
			calls = append(calls, "typescript")
			return nil, fmt.Errorf("backend unavailable")
		}},
		{Backend: "svelte", Call: func(ctx context.Context) (json.RawMessage, error) {
			calls = append(calls, "svelte")
			return json.RawMessage(`{"contents":"hover"}`), nil
		}},
	}

	var failed []string
	result := FirstNonNull(context.Background(), candidates, func(backend string, err error) {
		failed = append(failed, backend)
	})

	require.NotNil(t, result)
	assert.JSONEq(t, `{"contents":"hover"}`, string(result))
	assert.Equal(t, []string{"typescript", "svelte"}, calls)
	assert.Equal(t, []string{"typescript"}, failed, "the failing candidate is reported, never propagated")
}

func TestFirstNonNull_NullSkipped(t *testing.T) {
	candidates := []Candidate{
		{Backend: "typescript", Call: func(ctx context.Context) (json.RawMessage, error) {
			return json.RawMessage("null"), nil
		}},
		{Backend: "svelte", Call: func(ctx context.Context) (json.RawMessage, error) {
			return json.RawMessage(`[1]`), nil
		}},
	}
	result := FirstNonNull(context.Background(), candidates, nil)
	assert.JSONEq(t, `[1]`, string(result))
}

func TestFirstNonNull_AllFail(t *testing.T) {
	candidates := []Candidate{
		{Backend: "typescript", Call: func(ctx context.Context) (json.RawMessage, error) {
			return nil, fmt.Errorf("down")
		}},
	}
	assert.Nil(t, FirstNonNull(context.Background(), candidates, nil))
}

func TestAddsResolution(t *testing.T) {
	original := json.RawMessage(`{"label":"foo","kind":1}`)

	assert.False(t, AddsResolution(original, nil))
	assert.False(t, AddsResolution(original, json.RawMessage(`{"label":"foo","kind":1}`)))
	assert.True(t, AddsResolution(original, json.RawMessage(`{"label":"foo","kind":1,"detail":"() => void"}`)))
	assert.True(t, AddsResolution(original, json.RawMessage(`{"label":"foo","documentation":"docs"}`)))
	assert.True(t, AddsResolution(original, json.RawMessage(`{"label":"foo","additionalTextEdits":[]}`)))

	// Fields the original already carried do not count as added information.
	withDetail := json.RawMessage(`{"label":"foo","detail":"x"}`)
	assert.False(t, AddsResolution(withDetail, json.RawMessage(`{"label":"foo","detail":"x"}`)))
}
