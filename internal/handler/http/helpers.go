package http

import (
	"encoding/json"
	"net/http"
)

// decodeJSON decodes a request body into dst with a 1MB limit.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
