package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davenersa/beacon-core/internal/telemetry"
)

// uploadDirPerm is the permission mode for created device upload directories.
const uploadDirPerm = 0o750

// handleAudioUpload accepts a recorded audio file for a device.
//
// POST /api/audio — multipart form with an "audio" file field and a
// "deviceId" field. The file is stored under
// uploads/{deviceId}/audio-<timestamp>.mp3 and a {filename, url, timestamp}
// record is submitted to the device's audio log, so observers see uploads
// the same way they see inline audio records.
func (s *Server) handleAudioUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBodySize); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	deviceID := r.FormValue("deviceId")
	if deviceID == "" {
		writeBadRequest(w, "deviceId required")
		return
	}
	if strings.ContainsAny(deviceID, "/\\") || deviceID == "." || deviceID == ".." {
		writeBadRequest(w, "invalid deviceId")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeBadRequest(w, "No audio file uploaded")
		return
	}
	defer file.Close()

	// Colons are not valid in filenames on every filesystem.
	ts := time.Now().UTC().Format(time.RFC3339)
	filename := fmt.Sprintf("audio-%s.mp3", strings.ReplaceAll(ts, ":", "-"))

	dir := filepath.Join(s.storage.UploadDir, deviceID)
	if err := os.MkdirAll(dir, uploadDirPerm); err != nil {
		s.logger.Error("failed to create upload directory", "dir", dir, "error", err)
		writeInternalError(w, "failed to store audio")
		return
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		s.logger.Error("failed to create audio file", "error", err)
		writeInternalError(w, "failed to store audio")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.logger.Error("failed to write audio file", "error", err)
		writeInternalError(w, "failed to store audio")
		return
	}

	entry := telemetry.Record{
		"filename":  filename,
		"url":       fmt.Sprintf("/uploads/%s/%s", deviceID, filename),
		"timestamp": ts,
	}

	if _, err := s.store.Submit(deviceID, telemetry.CategoryAudio, []telemetry.Record{entry}); err != nil {
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Audio uploaded",
		"audio":   entry,
	})
}
