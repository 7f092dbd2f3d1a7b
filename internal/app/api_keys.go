package app

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader may carry the key instead of the key query parameter.
const APIKeyHeader = "X-API-Key"

// RequestAPIKey returns the key a request presents. The query parameter wins
// over the header.
func RequestAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.URL.Query().Get("key")); key != "" {
		return key
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(RequestAPIKey(r))
}

// IsInvalidAPIKey reports whether key is rejected. With no keys configured the
// gate is open and every key, including none, is accepted.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if !app.Config.KeyCheckEnabled() {
		return false
	}
	if key == "" {
		return true
	}
	valid := 0
	for _, configured := range app.Config.ApiKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(configured))
	}
	return valid == 0
}
