package handler

import (
	"strings"

	platformstrings "naijacare/pkg/platform/strings"
)

// sanitize normalizes a grant body before it reaches the consent service.
// Scope tokens are trimmed, lowercased and deduplicated. Metadata entries with
// a blank key are dropped.
func (r *GrantRequest) sanitize() {
	r.Scopes = platformstrings.NormalizeTokens(r.Scopes)
	r.ConsentVersion = strings.TrimSpace(r.ConsentVersion)

	if len(r.Metadata) == 0 {
		return
	}
	cleaned := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		cleaned[key] = strings.TrimSpace(v)
	}
	r.Metadata = cleaned
}
