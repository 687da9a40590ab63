package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadService stores image blobs under the assets directory served by the
// static file handler and returns their public URL. Callers that can live
// without a photo treat a failed upload as "no URL", not a hard error.
type UploadService struct {
	assetsDir string
	baseURL   string
}

func NewUploadService() *UploadService {
	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "./assets"
	}
	baseURL := strings.TrimSuffix(os.Getenv("PUBLIC_BASE_URL"), "/")
	return &UploadService{assetsDir: assetsDir, baseURL: baseURL}
}

// SaveImage decodes a base64 payload (with or without a data-URL prefix) and
// writes it under assets/uploads.
func (s *UploadService) SaveImage(payload string) (string, error) {
	if payload == "" {
		return "", fmt.Errorf("empty image payload")
	}

	// Strip a data URL header like "data:image/jpeg;base64,".
	if idx := strings.Index(payload, ","); idx != -1 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	uploadsDir := filepath.Join(s.assetsDir, "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filename := fmt.Sprintf("challenge-%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(uploadsDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return fmt.Sprintf("%s/assets/uploads/%s", s.baseURL, filename), nil
}
