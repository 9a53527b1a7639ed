package service

import (
	"path/filepath"
	"strings"

	"github.com/ats-ng/scmc-video-upload-api/internal/model"
)

// allowedExtensions lists the upload extensions accepted per media class.
var allowedExtensions = map[model.MediaType][]string{
	model.MediaTypeVideo: {".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv"},
	model.MediaTypeAudio: {".mp3", ".wav", ".ogg", ".m4a", ".flac"},
	model.MediaTypeImage: {".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"},
}

// isAllowedFile reports whether the filename carries an accepted media extension.
func isAllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, exts := range allowedExtensions {
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
	}
	return false
}

// classifyMedia derives the media class of an upload. The content type is
// authoritative when it carries a recognizable prefix; the extension table is
// the fallback when the content type is generic or missing.
func classifyMedia(contentType, filename string) model.MediaType {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return model.MediaTypeVideo
	case strings.HasPrefix(contentType, "audio/"):
		return model.MediaTypeAudio
	case strings.HasPrefix(contentType, "image/"):
		return model.MediaTypeImage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for mt, exts := range allowedExtensions {
		for _, e := range exts {
			if ext == e {
				return mt
			}
		}
	}
	return model.MediaTypeOther
}
