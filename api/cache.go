package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// getCacheDir determines the appropriate OS-specific cache directory.
func getCacheDir(subdir string) (string, error) {
	var baseCacheDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		baseCacheDir = os.Getenv("LOCALAPPDATA")
		if baseCacheDir == "" {
			err = fmt.Errorf("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			err = fmt.Errorf("HOME environment variable not set")
		} else {
			baseCacheDir = filepath.Join(homeDir, "Library", "Caches")
		}
	default: // linux, bsd, etc.
		baseCacheDir = os.Getenv("XDG_CACHE_HOME")
		if baseCacheDir == "" {
			homeDir := os.Getenv("HOME")
			if homeDir == "" {
				err = fmt.Errorf("HOME environment variable not set")
			} else {
				baseCacheDir = filepath.Join(homeDir, ".cache")
			}
		}
	}

	if err != nil {
		return "", err
	}

	cacheDir := filepath.Join(baseCacheDir, "goclouds", subdir)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", cacheDir, err)
	}
	return cacheDir, nil
}

// cacheName derives a file name for a URL, keeping its extension.
func cacheName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	ext := filepath.Ext(rawURL)
	if len(ext) > 8 {
		ext = ""
	}
	return hex.EncodeToString(sum[:12]) + ext
}
