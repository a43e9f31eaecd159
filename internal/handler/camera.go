package handler

import (
	"net/http"

	"facegreeter/internal/config"
	"facegreeter/internal/dto"
	"facegreeter/internal/logger"
	"facegreeter/internal/service/capture"
)

// ConnectCameraHandler validates a network camera, optionally provisions its Wi-Fi,
// proves the RTSP stream delivers frames and makes it the active camera.
func ConnectCameraHandler(registry *capture.Registry, provisioner *capture.Provisioner, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.ConnectCameraRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, err)
			return
		}

		if err := capture.ValidateIPv4(req.IP); err != nil {
			respondErr(w, err)
			return
		}

		rtspURL := capture.BuildRTSPURL(req.IP, req.Username, req.Password, cfg.RTSPPort, cfg.RTSPPath)
		resp := dto.ConnectCameraResponse{RTSPURL: capture.Redact(rtspURL)}

		if req.WiFiSSID != "" && provisioner.Enabled() {
			creds := capture.WiFiCredentials{SSID: req.WiFiSSID, Password: req.WiFiPassword}
			if err := provisioner.Provision(r.Context(), req.IP, creds); err != nil {
				logger.Warning("Wi-Fi provisioning for %s failed: %v", req.IP, err)
				resp.Warning = "wifi provisioning failed: " + err.Error()
			}
		}

		if err := registry.Probe(rtspURL); err != nil {
			logger.Error("Cannot connect camera %s: %v", req.IP, err)
			message := err.Error()
			resp.Error = &message
			respondJSON(w, statusFor(err), resp)
			return
		}

		registry.SetActive(rtspURL)
		resp.Success = true
		respondJSON(w, http.StatusOK, resp)
	}
}
