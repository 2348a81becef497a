package config

import (
	"log"
	"os"
	"strconv"
)

const megabyte = 1 << 20

// UploadLimits are the per-type size ceilings in bytes.
type UploadLimits struct {
	Image int64
	Video int64
	File  int64
}

type StorageConfig struct {
	Backend      string // "local" or "gcs"
	UploadDir    string
	PublicPrefix string
	GCSBucket    string
}

type AppConfig struct {
	Port    string
	Migrate bool
	Limits  UploadLimits
	Storage StorageConfig
}

// Load reads the application config from the environment. Call after
// godotenv.Load so .env values are visible.
func Load() AppConfig {
	return AppConfig{
		Port:    envString("PORT", "3000"),
		Migrate: envBool("DB_MIGRATE", false),
		Limits: UploadLimits{
			Image: envMegabytes("UPLOAD_MAX_IMAGE_MB", 25),
			Video: envMegabytes("UPLOAD_MAX_VIDEO_MB", 500),
			File:  envMegabytes("UPLOAD_MAX_FILE_MB", 50),
		},
		Storage: StorageConfig{
			Backend:      envString("STORAGE_BACKEND", "local"),
			UploadDir:    envString("UPLOAD_DIR", "uploads"),
			PublicPrefix: envString("UPLOAD_PUBLIC_PREFIX", "/uploads"),
			GCSBucket:    os.Getenv("GCS_BUCKET"),
		},
	}
}

// MaxBody is the largest request body the server has to accept.
func (l UploadLimits) MaxBody() int64 {
	m := l.Image
	if l.Video > m {
		m = l.Video
	}
	if l.File > m {
		m = l.File
	}
	// room for multipart framing and form fields
	return m + megabyte
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, def)
		return def
	}
	return b
}

func envMegabytes(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def * megabyte
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %dMB", key, v, def)
		return def * megabyte
	}
	return int64(n * megabyte)
}
