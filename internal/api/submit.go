package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/davenersa/beacon-core/internal/ingest"
)

// handleSubmit accepts the mixed submission payload: device identity plus
// any combination of category arrays and a location object.
//
// POST /submit
//
// Categories are applied independently; a failure in one never blocks the
// others. The response acknowledges the device the payload addressed.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sub, err := ingest.Parse(body)
	if err != nil {
		if errors.Is(err, ingest.ErrMissingDeviceID) {
			writeBadRequest(w, `deviceId required (or field "device")`)
			return
		}
		writeBadRequest(w, err.Error())
		return
	}

	accepted, err := ingest.Apply(s.store, sub)
	if err != nil {
		// Partial failures: some batches may have been stored. Report the
		// failure but keep the shape of the success response.
		s.logger.Warn("submission partially failed",
			"device_id", sub.DeviceID,
			"accepted", accepted,
			"error", err,
		)
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Data received for " + sub.DeviceID,
		"accepted": accepted,
	})
}

// handleDeviceInfo merges metadata fields into a device's info.
//
// POST /api/deviceinfo
//
// The body is {deviceId, ...fields}; everything but the id merges
// last-write-wins. Responds with the full merged info.
func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	deviceID, _ := body["deviceId"].(string)
	if deviceID == "" {
		writeBadRequest(w, "deviceId required")
		return
	}
	delete(body, "deviceId")

	info, err := s.store.MergeInfo(deviceID, body)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Device info updated",
		"info":    info,
	})
}
