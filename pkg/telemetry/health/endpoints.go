package health

import (
	"encoding/json"
	"net/http"
)

// LivenessHandler serves the liveness probe. It always answers 200.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return serveStatus(func(r *http.Request) (int, Status) {
		return http.StatusOK, c.CheckLiveness(r.Context())
	})
}

// ReadinessHandler serves the readiness probe: 200 when every component
// check passes, 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return serveStatus(func(r *http.Request) (int, Status) {
		st := c.CheckReadiness(r.Context())
		if st.Status != StateReady {
			return http.StatusServiceUnavailable, st
		}
		return http.StatusOK, st
	})
}

// serveStatus wraps a status function in a GET/HEAD-only JSON handler.
func serveStatus(fn func(r *http.Request) (int, Status)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		default:
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		code, st := fn(r)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(st)
		}
	}
}
