//go:build unit

package credential_test

import (
	"strings"
	"testing"

	"tickethub/internal/pkg/credential"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := credential.NewRandomGenerator()
	eventID := uuid.MustParse("3f2f60c8-0b3d-4c9e-9f1a-8f6f1f6b0a01")
	typeID := uuid.MustParse("ab12cd34-0000-4000-8000-000000000002")

	t.Run("embeds event and type correlation", func(t *testing.T) {
		token, err := gen.Generate(uuid.New(), eventID, typeID)
		require.NoError(t, err)

		parts := strings.Split(token, "-")
		require.Len(t, parts, 4)
		assert.Equal(t, "TIX", parts[0])
		assert.Equal(t, "3F2F60C8", parts[1])
		assert.Equal(t, "AB12CD34", parts[2])
		assert.Len(t, parts[3], 24)
	})

	t.Run("no duplicates over many generations", func(t *testing.T) {
		seen := make(map[string]struct{}, 10000)
		for range 10000 {
			token, err := gen.Generate(uuid.New(), eventID, typeID)
			require.NoError(t, err)
			_, dup := seen[token]
			require.False(t, dup, "duplicate credential generated: %s", token)
			seen[token] = struct{}{}
		}
	})
}
