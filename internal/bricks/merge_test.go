package bricks

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

var testProvenance = Provenance{Source: "bricksCopiedElements", SourceURL: "https://brixies.test", Version: "1.12"}

func TestMergeSingleSectionReturnsObject(t *testing.T) {
	doc := mustParse(t, `{"content":[{"id":"a1","children":[]}],"globalClasses":[{"id":"c1","name":"hero"}],"globalElements":[]}`)

	merged, err := Merge([]*Document{doc}, testProvenance)
	require.NoError(t, err)
	assert.Same(t, doc, merged)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, merged))
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &top))
	assert.Len(t, top, 3)
	assert.NotContains(t, top, "source")
	assert.NotContains(t, top, "sourceUrl")
	assert.NotContains(t, top, "version")
}

func TestMergeConcatenatesInOrder(t *testing.T) {
	first := mustParse(t, `{"content":[{"id":"a1"},{"id":"a2"}],"globalClasses":[{"id":"c1","name":"hero"}],"globalElements":[{"id":"g1"}]}`)
	second := mustParse(t, `{"content":[{"id":"b1"}],"globalClasses":[{"id":"c2","name":"cta"}]}`)
	third := mustParse(t, `{"content":[{"id":"d1"},{"id":"d2"},{"id":"d3"}]}`)

	merged, err := Merge([]*Document{first, second, third}, testProvenance)
	require.NoError(t, err)

	assert.Len(t, merged.Content, len(first.Content)+len(second.Content)+len(third.Content))
	ids := make([]string, 0, len(merged.Content))
	for _, el := range merged.Content {
		ids = append(ids, el.ID)
	}
	assert.Equal(t, []string{"a1", "a2", "b1", "d1", "d2", "d3"}, ids)
	assert.Len(t, merged.GlobalClasses, 2)
	assert.Len(t, merged.GlobalElements, 1)
	assert.Equal(t, testProvenance, merged.Provenance)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, merged))
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &top))
	for _, key := range []string{"content", "source", "sourceUrl", "version", "globalClasses", "globalElements"} {
		assert.Contains(t, top, key)
	}

	merged.Content[0].ID = "mutated"
	assert.Equal(t, "a1", first.Content[0].ID, "merge must not share elements with its inputs")
}

func TestMergeDetectsCollisions(t *testing.T) {
	first := mustParse(t, `{"content":[{"id":"same"}],"globalClasses":[{"id":"c1","name":"hero"}]}`)
	second := mustParse(t, `{"content":[{"id":"same"}],"globalClasses":[{"id":"c1","name":"cta"}]}`)

	_, err := Merge([]*Document{first, second}, testProvenance)
	require.Error(t, err)
	var collision *CollisionError
	require.True(t, errors.As(err, &collision))
	require.Len(t, collision.Collisions, 2)
	assert.Equal(t, "class", collision.Collisions[0].Kind)
	assert.Equal(t, "element", collision.Collisions[1].Kind)
	assert.Equal(t, []int{0, 1}, collision.Collisions[1].Sections)
	assert.Contains(t, err.Error(), `element id "same" in sections 1,2`)
}

func TestMergeEmpty(t *testing.T) {
	_, err := Merge(nil, testProvenance)
	assert.ErrorIs(t, err, ErrNoSections)
}
