package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// RemoteRecognizer delegates detection and identification to another facegreeter
// (or compatible) instance through its /detect_face endpoint. The remote side owns its gallery.
type RemoteRecognizer struct {
	baseURL string
	client  *http.Client
	quality int
}

type remoteDetectResponse struct {
	Success   *bool    `json:"success,omitempty"`
	Error     string   `json:"error,omitempty"`
	Locations [][4]int `json:"locations"`
	Names     []string `json:"names"`
}

func NewRemoteRecognizer(baseURL string, timeout time.Duration, quality int) (*RemoteRecognizer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote detector URL is empty", model.ErrValidation)
	}
	return &RemoteRecognizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		quality: quality,
	}, nil
}

func (r *RemoteRecognizer) Name() string {
	return "remote"
}

func (r *RemoteRecognizer) call(frame gocv.Mat) (*remoteDetectResponse, error) {
	data, err := EncodeJPEG(frame, r.quality)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	resp, err := r.client.Post(r.baseURL+"/detect_face", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", model.ErrExternalService, err)
	}

	var result remoteDetectResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: invalid response (status %d): %v", model.ErrExternalService, resp.StatusCode, err)
	}

	// The remote answers 400 "No face detected" for an empty frame; that is not a failure here.
	if resp.StatusCode == http.StatusBadRequest && strings.EqualFold(result.Error, "No face detected") {
		return &remoteDetectResponse{}, nil
	}
	if resp.StatusCode != http.StatusOK || (result.Success != nil && !*result.Success) {
		return nil, fmt.Errorf("%w: remote detector returned %d: %s", model.ErrExternalService, resp.StatusCode, result.Error)
	}
	return &result, nil
}

func (r *RemoteRecognizer) Recognize(frame gocv.Mat, _ []model.GalleryEntry) ([]model.Detection, error) {
	result, err := r.call(frame)
	if err != nil {
		return nil, err
	}

	detections := make([]model.Detection, 0, len(result.Locations))
	for i, loc := range result.Locations {
		name := model.UnknownIdentity
		if i < len(result.Names) {
			name = result.Names[i]
		}
		// top, right, bottom, left
		rect := image.Rect(loc[3], loc[0], loc[1], loc[2])
		detections = append(detections, model.NewDetection(rect, name))
	}
	return detections, nil
}

// Reference only confirms that the remote sees a face; it keeps no local reference data.
func (r *RemoteRecognizer) Reference(img gocv.Mat) (model.FaceReference, error) {
	result, err := r.call(img)
	if err != nil {
		return model.FaceReference{}, err
	}
	if len(result.Locations) == 0 {
		return model.FaceReference{}, model.ErrNoFaceDetected
	}
	loc := result.Locations[0]
	return model.FaceReference{Width: loc[1] - loc[3], Height: loc[2] - loc[0]}, nil
}

func (r *RemoteRecognizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
