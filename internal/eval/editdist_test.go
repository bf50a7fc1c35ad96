package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterErrorRate(t *testing.T) {
	t.Run("identical strings score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CharacterErrorRate("hello world", "hello world"))
	})

	t.Run("both empty score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CharacterErrorRate("", ""))
	})

	t.Run("single substitution", func(t *testing.T) {
		assert.InDelta(t, 1.0/3.0, CharacterErrorRate("abc", "abd"), 1e-9)
	})

	t.Run("deleting everything scores one", func(t *testing.T) {
		assert.Equal(t, 1.0, CharacterErrorRate("abc", ""))
	})

	t.Run("empty reference normalizes by one", func(t *testing.T) {
		assert.Equal(t, 3.0, CharacterErrorRate("", "abc"))
	})

	t.Run("insertion", func(t *testing.T) {
		assert.InDelta(t, 0.25, CharacterErrorRate("abcd", "abxcd"), 1e-9)
	})

	t.Run("multibyte runes count as single characters", func(t *testing.T) {
		assert.InDelta(t, 0.2, CharacterErrorRate("héllo", "hello"), 1e-9)
	})

	t.Run("completely different strings", func(t *testing.T) {
		assert.Equal(t, 1.0, CharacterErrorRate("abc", "xyz"))
	})
}
