package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"facegreeter/internal/logger"
	"facegreeter/internal/service/stream"
)

const frameBoundary = "frame"

// VideoFeedHandler streams annotated frames as multipart/x-mixed-replace JPEG.
// Each request gets its own session; the session ends when the client goes away.
func VideoFeedHandler(factory *stream.Factory, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := factory.NewSession()
		if err != nil {
			logger.Error("Cannot start video feed: %v", err)
			respondErr(w, err)
			return
		}
		defer session.Close()

		flusher, _ := w.(http.Flusher)

		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+frameBoundary)
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusOK)
		if flusher != nil {
			flusher.Flush()
		}

		for {
			chunk, err := session.Next(r.Context())
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
					logger.Warning("Video feed %s stopped: %v", session.ID, err)
				}
				return
			}

			if err := writeFrame(w, chunk); err != nil {
				logger.Info("Video feed %s client disconnected", session.ID)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// writeFrame writes one multipart part: --frame, the JPEG header, the image and CRLF.
func writeFrame(w io.Writer, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", frameBoundary); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
