package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrantRequest_Sanitize(t *testing.T) {
	t.Run("normalizes scopes and version", func(t *testing.T) {
		req := GrantRequest{
			Scopes:         []string{" AI_Processing ", "data_collection", "ai_processing", "  "},
			ConsentVersion: " v2 ",
		}
		req.sanitize()
		assert.Equal(t, []string{"ai_processing", "data_collection"}, req.Scopes)
		assert.Equal(t, "v2", req.ConsentVersion)
		assert.Nil(t, req.Metadata)
	})

	t.Run("trims metadata and drops blank keys", func(t *testing.T) {
		req := GrantRequest{
			Scopes:   []string{"data_collection"},
			Metadata: map[string]string{" region ": " kano ", "  ": "orphan"},
		}
		req.sanitize()
		assert.Equal(t, map[string]string{"region": "kano"}, req.Metadata)
	})

	t.Run("unknown scopes pass through for the service to reject", func(t *testing.T) {
		req := GrantRequest{Scopes: []string{"Location"}}
		req.sanitize()
		assert.Equal(t, []string{"location"}, req.Scopes)
	})
}
