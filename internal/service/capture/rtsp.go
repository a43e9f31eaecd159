package capture

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"facegreeter/internal/model"
)

// ValidateIPv4 accepts dotted-quad IPv4 addresses only.
func ValidateIPv4(ip string) error {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil || parsed.To4() == nil || strings.Contains(ip, ":") {
		return fmt.Errorf("%w: invalid IP address %q", model.ErrValidation, ip)
	}
	return nil
}

// BuildRTSPURL assembles rtsp://user:pass@ip:port/path with credentials escaped.
func BuildRTSPURL(ip, username, password string, port int, path string) string {
	u := url.URL{
		Scheme: "rtsp",
		Host:   net.JoinHostPort(strings.TrimSpace(ip), strconv.Itoa(port)),
		Path:   "/" + strings.TrimLeft(path, "/"),
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
	}
	return u.String()
}
