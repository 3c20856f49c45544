package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

type SaveSettingRequest struct {
	Key string `json:"key"`
	// Value is normally a string; objects such as macro goals are stored
	// as their compact JSON text.
	Value json.RawMessage `json:"value"`
}

func (req SaveSettingRequest) valueString() (string, bool) {
	raw := bytes.TrimSpace(req.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false
	}
	return buf.String(), true
}

func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		settings, err := h.tracker.ListSettings(r.Context())
		if err != nil {
			writeServiceError(w, err, "", "Failed to fetch settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)
		return
	}

	setting, err := h.tracker.GetSetting(r.Context(), key)
	if err != nil {
		writeServiceError(w, err, "", "Failed to fetch settings")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (h *APIHandler) SaveSettingHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveSettingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	value, ok := req.valueString()
	if req.Key == "" || !ok {
		writeError(w, http.StatusBadRequest, "Missing required fields: key, value")
		return
	}

	setting, err := h.tracker.SaveSetting(r.Context(), req.Key, value)
	if err != nil {
		writeServiceError(w, err, "", "Failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
