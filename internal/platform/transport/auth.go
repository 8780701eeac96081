package transport

import "net/http"

// WithAuth returns headers plus a single "Authorization: Bearer <token>" entry.
// An empty token returns headers untouched. The input map is never modified.
func WithAuth(headers map[string]string, token string) map[string]string {
	if token == "" {
		return headers
	}
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			continue
		}
		out[k] = v
	}
	out["Authorization"] = "Bearer " + token
	return out
}
