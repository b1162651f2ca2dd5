package v1alpha1

import (
	"net/http"

	api "github.com/dandori-work/fcfs-booking/api/v1alpha1"
)

// (GET /health)
func (s *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.healthSrv.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, api.Health{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, api.Health{Status: "ok"})
}
