package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n  ", "{}"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestCanonicalJSON(t *testing.T) {
	t.Run("sorts keys and removes whitespace", func(t *testing.T) {
		got, err := CanonicalJSON(`{"zebra": 1,  "apple": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"apple":"x","zebra":1}`, got)
	})

	t.Run("identical structure canonicalizes identically", func(t *testing.T) {
		a, err := CanonicalJSON(`{"b": 2, "a": 1}`)
		require.NoError(t, err)
		b, err := CanonicalJSON(`{ "a" : 1 , "b" : 2 }`)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("nested objects sort recursively", func(t *testing.T) {
		got, err := CanonicalJSON(`{"outer": {"z": null, "a": [1, 2]}}`)
		require.NoError(t, err)
		assert.Equal(t, `{"outer":{"a":[1,2],"z":null}}`, got)
	})

	t.Run("does not escape html characters", func(t *testing.T) {
		got, err := CanonicalJSON(`{"note": "a<b>c"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"note":"a<b>c"}`, got)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := CanonicalJSON(`not json`)
		assert.Error(t, err)
	})
}

func TestPlainText(t *testing.T) {
	t.Run("strips delimiters and collapses whitespace", func(t *testing.T) {
		got := PlainText(`{"name": "Maria Santos", "tags": ["a", "b"]}`)
		assert.Equal(t, "name Maria Santos tags a b", got)
	})

	t.Run("already plain text passes through", func(t *testing.T) {
		assert.Equal(t, "hello world", PlainText("hello   world"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", PlainText(""))
	})
}
