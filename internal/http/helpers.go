package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// decodeBody decodes a JSON request body into v, reporting a client error on
// malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// optionalQueryInt reads an optional integer query parameter. Unparsable and
// zero values count as absent.
func optionalQueryInt(r *http.Request, name string) *int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n == 0 {
		return nil
	}
	return &n
}

// pathID reads an integer path segment. A non-numeric segment is
// indistinguishable from a missing record at this boundary.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
