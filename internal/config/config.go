package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  int
	Host                  string
	LogDirectory          string
	GalleryDirectory      string // flat directory of <name>.jpg files
	DatabasePath          string
	SnapshotDirectory     string
	SnapshotBufferLimit   int
	SnapshotFlushInterval int // seconds
	AudioPath             string
	MaxUploadSize         int64

	CameraSource   string // device index ("0") or stream URL
	FallbackCamera string // opened when CameraSource fails; empty disables
	RTSPPort       int
	RTSPPath       string
	FrameWidth     int
	FrameHeight    int
	FrameInterval  time.Duration
	JPEGQuality    int

	MotionThreshold    float64 // mean absolute gray difference, 0-255
	DetectorBackend    string  // cascade, dlib or remote
	CascadePath        string
	ModelsDirectory    string // dlib model files
	RemoteDetectorURL  string
	PixelMSEThreshold  float64
	EmbeddingTolerance float64
	MatchPolicy        string // first or nearest
	GreetMode          string // first or each

	ExternalTimeout time.Duration

	Chat    ChatConfig
	TTS     TTSConfig
	Publish PublishConfig
	MQTT    MQTTConfig
}

type ChatConfig struct {
	Provider     string // openai, gemini or none
	BaseURL      string
	APIKey       string
	Model        string
	GeminiAPIKey string
	GeminiModel  string
	MaxTokens    int
}

type TTSConfig struct {
	Enabled      bool
	LanguageCode string
	Voice        string
}

type PublishConfig struct {
	URL          string // remote site receiving /log_unknown and /update_audio
	ProvisionURL string // remote camera provisioning endpoint
}

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// .env is optional, system environment is used when it is missing
	_ = godotenv.Load()

	return &Config{
		Port:                  getEnvAsInt("PORT", 5000),
		Host:                  getEnv("HOST", "0.0.0.0"),
		LogDirectory:          getEnv("LOG_DIR", filepath.Join(".", "logs")),
		GalleryDirectory:      getEnv("GALLERY_DIR", filepath.Join(".", "images")),
		DatabasePath:          getEnv("DB_PATH", filepath.Join(".", "data", "facegreeter.db")),
		SnapshotDirectory:     getEnv("SNAPSHOT_DIR", filepath.Join(".", "snapshots")),
		SnapshotBufferLimit:   getEnvAsInt("SNAPSHOT_BUFFER_LIMIT", 20),
		SnapshotFlushInterval: getEnvAsInt("SNAPSHOT_FLUSH_INTERVAL", 30),
		AudioPath:             getEnv("AUDIO_PATH", "welcome.mp3"),
		MaxUploadSize:         getEnvAsInt64("MAX_UPLOAD_MB", 10) << 20,

		CameraSource:   getEnv("CAMERA_SOURCE", getEnv("V380_RTSP_URL", "0")),
		FallbackCamera: getEnv("FALLBACK_CAMERA", "0"),
		RTSPPort:       getEnvAsInt("RTSP_PORT", 554),
		RTSPPath:       getEnv("RTSP_PATH", "/live/ch00_0"),
		FrameWidth:     getEnvAsInt("FRAME_WIDTH", 640),
		FrameHeight:    getEnvAsInt("FRAME_HEIGHT", 480),
		FrameInterval:  getEnvAsDuration("FRAME_INTERVAL", 0),
		JPEGQuality:    getEnvAsInt("JPEG_QUALITY", 90),

		MotionThreshold:    getEnvAsFloat("MOTION_THRESHOLD", 5),
		DetectorBackend:    strings.ToLower(getEnv("DETECTOR_BACKEND", "cascade")),
		CascadePath:        getEnv("CASCADE_PATH", "/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml"),
		ModelsDirectory:    getEnv("MODELS_DIR", filepath.Join(".", "models")),
		RemoteDetectorURL:  getEnv("FACE_DETECTION_URL", ""),
		PixelMSEThreshold:  getEnvAsFloat("PIXEL_MSE_THRESHOLD", 1000),
		EmbeddingTolerance: getEnvAsFloat("EMBEDDING_TOLERANCE", 0.6),
		MatchPolicy:        strings.ToLower(getEnv("MATCH_POLICY", "nearest")),
		GreetMode:          strings.ToLower(getEnv("GREET_MODE", "first")),

		ExternalTimeout: getEnvAsDuration("EXTERNAL_TIMEOUT", 10*time.Second),

		Chat: ChatConfig{
			Provider:     strings.ToLower(getEnv("CHAT_PROVIDER", "openai")),
			BaseURL:      getEnv("CHAT_BASE_URL", "https://api.x.ai/v1"),
			APIKey:       getEnv("CHAT_API_KEY", os.Getenv("GROK_API_KEY")),
			Model:        getEnv("CHAT_MODEL", "grok-3"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			MaxTokens:    getEnvAsInt("CHAT_MAX_TOKENS", 100),
		},
		TTS: TTSConfig{
			Enabled:      getEnvAsBool("TTS_ENABLED", true),
			LanguageCode: getEnv("TTS_LANGUAGE", "en-US"),
			Voice:        getEnv("TTS_VOICE", "en-US-Wavenet-D"),
		},
		Publish: PublishConfig{
			URL:          strings.TrimRight(getEnv("PUBLISH_URL", os.Getenv("FIREBASE_URL")), "/"),
			ProvisionURL: getEnv("PROVISION_URL", ""),
		},
		MQTT: MQTTConfig{
			Broker:   getEnv("MQTT_BROKER", ""),
			Topic:    getEnv("MQTT_TOPIC", "facegreeter/greetings"),
			ClientID: getEnv("MQTT_CLIENT_ID", "facegreeter"),
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("1s", "500ms") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultValue
}
