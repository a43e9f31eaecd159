package handler

import (
	"fmt"
	"net/http"

	"facegreeter/internal/config"
	"facegreeter/internal/dto"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/capture"
	"facegreeter/internal/service/gallery"

	"gocv.io/x/gocv"
)

// AddFaceHandler enrolls a face from a multipart form (name, image) or JSON (name, image_data).
func AddFaceHandler(g *gallery.Gallery, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)

		name, data, err := readAddFace(r)
		if err != nil {
			logger.Warning("Rejected add_face request: %v", err)
			respondErr(w, err)
			return
		}

		logger.Info("Adding face: %s", name)
		if _, err := g.Enroll(name, data); err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				logger.Error("Error adding face %s: %v", name, err)
			}
			respondErr(w, err)
			return
		}

		respondJSON(w, http.StatusOK, dto.StatusResponse{Success: true})
	}
}

func readAddFace(r *http.Request) (string, []byte, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", nil, fmt.Errorf("%w: invalid form: %v", model.ErrValidation, err)
		}
		data, err := readFormFile(r, "image")
		if err != nil {
			return "", nil, err
		}
		return r.FormValue("name"), data, nil
	}

	var req dto.AddFaceRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", nil, err
	}
	data, err := decodeBase64Image(req.ImageData)
	if err != nil {
		return "", nil, err
	}
	return req.Name, data, nil
}

// DetectFaceHandler locates and identifies faces in an uploaded image, a base64 image,
// or a single frame grabbed from rtsp_url.
func DetectFaceHandler(faces *ai.FaceService, g *gallery.Gallery, registry *capture.Registry, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)

		frame, err := readDetectFrame(r, registry)
		if err != nil {
			frame.Close()
			logger.Warning("Rejected detect_face request: %v", err)
			respondErr(w, err)
			return
		}
		defer frame.Close()

		detections, err := faces.Detect(frame, g.Snapshot())
		if err != nil {
			logger.Error("Error detecting faces: %v", err)
			respondErr(w, err)
			return
		}

		resp := dto.DetectFaceResponse{
			Success:   true,
			Locations: make([][4]int, 0, len(detections)),
			Names:     make([]string, 0, len(detections)),
		}
		for _, d := range detections {
			resp.Locations = append(resp.Locations, d.Box.Tuple())
			resp.Names = append(resp.Names, d.Identity)
		}

		logger.Info("Detected %d face(s)", len(detections))
		respondJSON(w, http.StatusOK, resp)
	}
}

func readDetectFrame(r *http.Request, registry *capture.Registry) (gocv.Mat, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return gocv.NewMat(), fmt.Errorf("%w: invalid form: %v", model.ErrValidation, err)
		}
		data, err := readFormFile(r, "image")
		if err != nil {
			return gocv.NewMat(), err
		}
		return ai.DecodeImage(data)
	}

	var req dto.DetectFaceRequest
	if err := decodeJSON(r, &req); err != nil {
		return gocv.NewMat(), err
	}

	if req.RTSPURL != "" {
		return grabFrame(registry, req.RTSPURL)
	}

	data, err := decodeBase64Image(req.ImageData)
	if err != nil {
		return gocv.NewMat(), err
	}
	return ai.DecodeImage(data)
}

func grabFrame(registry *capture.Registry, uri string) (gocv.Mat, error) {
	src, err := registry.OpenURI(uri)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer src.Close()

	frame := gocv.NewMat()
	if err := src.Read(&frame); err != nil {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("%w %s: no frames received", model.ErrDeviceUnavailable, capture.Redact(uri))
	}
	return frame, nil
}

// GalleryHandler lists enrolled names.
func GalleryHandler(g *gallery.Gallery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := g.Names()
		respondJSON(w, http.StatusOK, dto.GalleryResponse{Names: names, Count: len(names)})
	}
}
