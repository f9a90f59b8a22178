package privacy

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestHashSubjectID(t *testing.T) {
	t.Run("is deterministic and fixed length", func(t *testing.T) {
		first := HashSubjectID("clinic_001")
		second := HashSubjectID("clinic_001")
		require.Equal(t, first, second)
		assert.Regexp(t, hexPattern, first)
	})

	t.Run("matches sha256 prefix", func(t *testing.T) {
		// sha256("abc") = ba7816bf8f01cfea414140de5dae2223...
		assert.Equal(t, "ba7816bf8f01cfea", HashSubjectID("abc"))
	})

	t.Run("never echoes the input", func(t *testing.T) {
		assert.NotContains(t, HashSubjectID("clinic_001"), "clinic_001")
		assert.NotEqual(t, HashSubjectID("clinic_001"), HashSubjectID("clinic_002"))
	})
}

func TestHasher(t *testing.T) {
	t.Run("zero value is unsalted", func(t *testing.T) {
		var h Hasher
		assert.False(t, h.Salted())
		assert.Equal(t, HashSubjectID("clinic_001"), h.Hash("clinic_001"))
		assert.Equal(t, HashSubjectID("clinic_001"), NewHasher("").Hash("clinic_001"))
	})

	t.Run("salt changes the digest deterministically", func(t *testing.T) {
		h := NewHasher("pepper")
		require.True(t, h.Salted())
		assert.Regexp(t, hexPattern, h.Hash("clinic_001"))
		assert.Equal(t, h.Hash("clinic_001"), h.Hash("clinic_001"))
		assert.NotEqual(t, HashSubjectID("clinic_001"), h.Hash("clinic_001"))
		assert.NotEqual(t, NewHasher("other").Hash("clinic_001"), h.Hash("clinic_001"))
	})
}

func TestRedactText(t *testing.T) {
	assert.Equal(t, "short", RedactText("short", 20))
	assert.Equal(t, "Patient unconscious ...", RedactText("Patient unconscious after fall", 20))
	assert.Equal(t, "Ìrora...", RedactText("Ìrora inú", 5))
	assert.Equal(t, "abcdefghijklmnopqrst...", RedactText("abcdefghijklmnopqrstuvwxyz", 0))
}
