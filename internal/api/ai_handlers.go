package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
)

type EstimateRequest struct {
	FoodName string `json:"foodName"`
}

// EstimateHandler forwards AI failures to the client verbatim.
func (h *APIHandler) EstimateHandler(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.FoodName) == "" {
		writeError(w, http.StatusBadRequest, "กรุณาระบุชื่ออาหาร")
		return
	}

	estimate, err := h.analyzer.EstimateFood(r.Context(), req.FoodName)
	if err != nil {
		log.Printf("Estimate error for %q: %v", req.FoodName, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

func (h *APIHandler) AnalyzeInBodyHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Error reading uploaded image: %v", err)
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}
	if len(image) == 0 {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		writeError(w, http.StatusBadRequest, "Uploaded file is not an image")
		return
	}

	result, err := h.analyzer.AnalyzeInBody(r.Context(), image, mimeType)
	if err != nil {
		log.Printf("InBody analysis error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
