// Package api locates and loads the clouds fragment shader source, either from
// disk or over http(s) with an on-disk cache.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

var ErrNotFound = errors.New("shader source not found")

// DefaultShader is the shader path used when none is given.
const DefaultShader = "shaders/clouds.frag"

// Source is a loaded fragment shader body.
type Source struct {
	Location string
	Code     string
}

// FetchResult is delivered by FetchShaderSourceAsync.
type FetchResult struct {
	Source *Source
	Err    error
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FetchShaderSource loads the shader at location, a file path or an http(s)
// URL. Relative paths are tried against the working directory and then the
// executable's directory.
func FetchShaderSource(ctx context.Context, location string, useCache bool) (*Source, error) {
	if location == "" {
		location = DefaultShader
	}
	if isURL(location) {
		return fetchURL(ctx, location, useCache)
	}
	return readFile(location)
}

// FetchShaderSourceAsync runs FetchShaderSource in a goroutine.
func FetchShaderSourceAsync(ctx context.Context, location string, useCache bool) <-chan FetchResult {
	ch := make(chan FetchResult, 1)
	go func() {
		src, err := FetchShaderSource(ctx, location, useCache)
		ch <- FetchResult{Source: src, Err: err}
	}()
	return ch
}

func candidatePaths(location string) []string {
	if filepath.IsAbs(location) {
		return []string{location}
	}
	paths := []string{location}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), location))
	}
	return paths
}

func readFile(location string) (*Source, error) {
	for _, path := range candidatePaths(location) {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read shader %s: %w", path, err)
		}
		log.Debug("Loaded shader from disk", "path", path)
		return &Source{Location: path, Code: string(data)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
}

func fetchURL(ctx context.Context, rawURL string, useCache bool) (*Source, error) {
	var cachePath string
	if useCache {
		cacheDir, err := getCacheDir("shaders")
		if err != nil {
			return nil, fmt.Errorf("could not get cache directory: %w", err)
		}
		cachePath = filepath.Join(cacheDir, cacheName(rawURL))
		if data, err := os.ReadFile(cachePath); err == nil {
			log.Debug("Loaded shader from cache", "url", rawURL, "path", cachePath)
			return &Source{Location: rawURL, Code: string(data)}, nil
		}
	}

	data, err := getRaw(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shader %s: %w", rawURL, err)
	}

	if useCache {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			log.Warn("Failed to save shader to cache", "path", cachePath, "err", err)
		}
	}
	return &Source{Location: rawURL, Code: string(data)}, nil
}
