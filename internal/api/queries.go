package api

import (
	"net/http"

	"github.com/davenersa/beacon-core/internal/telemetry"
)

// handleListDevices returns the known device ids.
//
// GET /api/devices
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.DeviceIDs())
}

// handleCategory returns the query handler for one telemetry category.
//
// GET /api/{category}?deviceId=
//
// With deviceId the response is that device's records in append order
// (an unknown device yields an empty list, not an error). Without it,
// records from all devices are flattened with a deviceId key.
func (s *Server) handleCategory(cat telemetry.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.URL.Query().Get("deviceId")

		tagged, err := s.store.Query(cat, deviceID)
		if err != nil {
			writeInternalError(w, err.Error())
			return
		}

		if deviceID != "" {
			// Scoped: bare records, no deviceId tag.
			records := make([]telemetry.Record, len(tagged))
			for i, t := range tagged {
				records[i] = t.Record
			}
			writeJSON(w, http.StatusOK, records)
			return
		}

		writeJSON(w, http.StatusOK, tagged)
	}
}
