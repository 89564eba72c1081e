package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Recover is the single top-level failure boundary for the request
// lifecycle. Any fault not handled further down is converted to a client
// error carrying the fault text; a failed validation is never a server
// error.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger := GetLogger(r.Context())
				logger.Error("panic recovered", "error", rec, "path", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprint(rec)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
