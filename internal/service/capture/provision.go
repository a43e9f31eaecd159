package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"facegreeter/internal/model"
)

// WiFiCredentials are pushed to a camera provisioning service before connecting.
type WiFiCredentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Provisioner forwards Wi-Fi credentials for a camera to PROVISION_URL.
type Provisioner struct {
	url    string
	client *http.Client
}

func NewProvisioner(url string, timeout time.Duration) *Provisioner {
	return &Provisioner{url: url, client: &http.Client{Timeout: timeout}}
}

// Enabled reports whether a provisioning endpoint is configured.
func (p *Provisioner) Enabled() bool {
	return p != nil && p.url != ""
}

// Provision posts {ip, ssid, password} to the provisioning endpoint.
func (p *Provisioner) Provision(ctx context.Context, ip string, creds WiFiCredentials) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(struct {
		IP string `json:"ip"`
		WiFiCredentials
	}{IP: ip, WiFiCredentials: creds})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: provisioning failed: %v", model.ErrExternalService, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: provisioning returned %d", model.ErrExternalService, resp.StatusCode)
	}
	return nil
}
