package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/calcount/calcount/internal/core"
	"github.com/calcount/calcount/internal/store"
)

type APIHandler struct {
	tracker        *core.TrackerService
	inbody         *core.InBodyService
	analyzer       core.Analyzer
	maxUploadBytes int64
}

func NewAPIHandler(tracker *core.TrackerService, inbody *core.InBodyService, analyzer core.Analyzer, maxUploadBytes int64) *APIHandler {
	return &APIHandler{
		tracker:        tracker,
		inbody:         inbody,
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps validation failures to 400 and missing records to
// 404. Anything else is logged and answered with the fixed message.
func writeServiceError(w http.ResponseWriter, err error, notFoundMsg, failMsg string) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		log.Printf("%s: %v", failMsg, err)
		writeError(w, http.StatusInternalServerError, failMsg)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("Invalid request body: %v", err)
	}
	return nil
}

// queryLimit defaults to core.DefaultHistoryLimit; an explicit 0 is kept.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return core.DefaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}

// flexInt accepts 550, 550.7 or "550". Fractions are truncated.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return fmt.Errorf("calories must be a number")
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("calories must be a number")
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return fmt.Errorf("calories is out of range")
	}
	*f = flexInt(math.Trunc(v))
	return nil
}

func (f *flexInt) intPtr() *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
