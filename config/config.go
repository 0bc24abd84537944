package config

import (
	"log"
	"os"
	"strconv"
)

const (
	defaultMatchThreshold   = 0.3
	defaultCooldownSeconds  = 30
	defaultCameraDevice     = 0
	defaultCaptureFPS       = 30
	defaultRecognizeEveryMs = 1000
)

type Config struct {
	// database path (SQLite file, created on first start)
	DatabasePath string

	// face detection model (OpenCV DNN, SSD res10)
	DetectorConfigPath string
	DetectorModelPath  string

	// face embedding model (FaceNet-style, 160x160 input)
	EmbeddingModelPath string

	// directory for enrollment snapshots; empty disables snapshots
	SnapshotsPath string

	// matching settings
	MatchThreshold float64

	// attendance settings
	CooldownSeconds int

	// live capture settings
	CameraDevice     int
	CaptureFPS       int
	RecognizeEveryMs int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	cfg := Config{
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", "attendance.db"),
		DetectorConfigPath: getEnvOrDefault("FACE_DNN_CONFIG_PATH", "./models/deploy.prototxt.txt"),
		DetectorModelPath:  getEnvOrDefault("FACE_DNN_MODEL_PATH", "./models/res10_300x300_ssd_iter_140000_fp16.caffemodel"),
		EmbeddingModelPath: getEnvOrDefault("FACE_EMBEDDING_MODEL_PATH", "./models/facenet.onnx"),
		SnapshotsPath:      getEnvOrDefault("SNAPSHOTS_PATH", "./snapshots"),
		MatchThreshold:     getEnvFloatOrDefault("MATCH_THRESHOLD", defaultMatchThreshold),
		CooldownSeconds:    getEnvIntOrDefault("ATTENDANCE_COOLDOWN_SECONDS", defaultCooldownSeconds),
		CameraDevice:       getEnvIntOrDefault("CAMERA_DEVICE", defaultCameraDevice),
		CaptureFPS:         getEnvIntOrDefault("CAPTURE_FPS", defaultCaptureFPS),
		RecognizeEveryMs:   getEnvIntOrDefault("RECOGNIZE_EVERY_MS", defaultRecognizeEveryMs),
	}

	return cfg, nil
}
