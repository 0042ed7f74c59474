package config

import (
	"path/filepath"
	"strings"
)

// UploadConfig описывает правила приёма файла для одного контекста
// загрузки. MaxSizeMB = 0 означает "лимит задаёт вызывающая сторона".
type UploadConfig struct {
	AllowedMimeTypes  []string
	AllowedExtensions []string
	MaxSizeMB         int64
	PathPrefix        string
}

var UploadContexts = map[string]UploadConfig{
	"order_video": {
		AllowedMimeTypes:  []string{"video/mp4", "video/webm", "video/quicktime", "application/octet-stream"},
		AllowedExtensions: []string{".mp4", ".webm", ".mov"},
		MaxSizeMB:         500,
		PathPrefix:        "videos",
	},
	"import_file": {
		AllowedMimeTypes: []string{
			"text/csv", "text/plain", "application/json",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel", "application/octet-stream",
		},
		AllowedExtensions: []string{".csv", ".txt", ".json", ".xlsx", ".xls"},
		PathPrefix:        "imports",
	},
	"backup_file": {
		AllowedMimeTypes:  []string{"application/json", "application/octet-stream"},
		AllowedExtensions: []string{".json"},
		PathPrefix:        "backups",
	},
}

// Accepts проверяет имя файла и его MIME-тип против правил контекста.
// Пустой MIME-тип пропускается: браузеры не всегда его присылают.
func (c UploadConfig) Accepts(fileName, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	extOK := len(c.AllowedExtensions) == 0
	for _, allowed := range c.AllowedExtensions {
		if ext == allowed {
			extOK = true
			break
		}
	}
	if !extOK {
		return false
	}

	if mimeType == "" || len(c.AllowedMimeTypes) == 0 {
		return true
	}
	mimeType = strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	for _, allowed := range c.AllowedMimeTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

// MaxSizeBytes — лимит контекста в байтах; fallback применяется, когда у
// контекста нет своего лимита.
func (c UploadConfig) MaxSizeBytes(fallback int64) int64 {
	if c.MaxSizeMB > 0 {
		return c.MaxSizeMB << 20
	}
	return fallback
}
