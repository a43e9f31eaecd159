package dto

// ConnectCameraRequest describes a network camera; Wi-Fi fields are optional.
type ConnectCameraRequest struct {
	IP           string `json:"ip"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	WiFiSSID     string `json:"wifi_ssid,omitempty"`
	WiFiPassword string `json:"wifi_password,omitempty"`
}

type ConnectCameraResponse struct {
	Success bool    `json:"success"`
	RTSPURL string  `json:"rtsp_url,omitempty"`
	Error   *string `json:"error"`
	Warning string  `json:"warning,omitempty"`
}
