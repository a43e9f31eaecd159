package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"facegreeter/internal/dto"
	"facegreeter/internal/model"
)

// NoFaceDetectedMessage is the exact error text clients match on.
const NoFaceDetectedMessage = "No face detected"

const multipartMemory = 8 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, dto.StatusResponse{Success: false, Error: &message})
}

// respondErr maps the error taxonomy onto HTTP: bad input is 400, everything else 500.
func respondErr(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), errorMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrDecode),
		errors.Is(err, model.ErrNoFaceDetected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if errors.Is(err, model.ErrNoFaceDetected) {
		return NoFaceDetectedMessage
	}
	return err.Error()
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// decodeJSON reads a JSON body into v, wrapping failures as validation errors.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", model.ErrValidation, err)
	}
	return nil
}

// readFormFile returns the bytes of a multipart file field.
func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %s file", model.ErrValidation, field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", model.ErrValidation, field, err)
	}
	return data, nil
}

// decodeBase64Image accepts raw base64 or a data URL ("data:image/jpeg;base64,...").
func decodeBase64Image(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: image_data is required", model.ErrValidation)
	}
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %v", model.ErrDecode, err)
	}
	return data, nil
}
