package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"facegreeter/internal/model"
)

// HTTPPublisher notifies the remote site: unknown visitors are logged through
// POST /log_unknown and synthesized greetings are uploaded through POST /update_audio.
type HTTPPublisher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPPublisher(baseURL string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (p *HTTPPublisher) Name() string {
	return "http"
}

func (p *HTTPPublisher) Publish(ctx context.Context, event model.GreetingEvent) error {
	if !event.Known {
		if err := p.post(ctx, "/log_unknown", "", nil); err != nil {
			return err
		}
	}

	if len(event.Audio) == 0 {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "welcome.mp3")
	if err != nil {
		return err
	}
	if _, err := part.Write(event.Audio); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return p.post(ctx, "/update_audio", writer.FormDataContentType(), &body)
}

func (p *HTTPPublisher) post(ctx context.Context, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrExternalService, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", model.ErrExternalService, path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: POST %s returned %d", model.ErrExternalService, path, resp.StatusCode)
	}
	return nil
}
