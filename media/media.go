// Package media provides attachment values (images, audio, video) that can be
// carried on conversation messages, plus the encoding helpers adapters use to
// turn them into provider wire formats.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnprocessable is returned when a media value carries no usable source
// (no embedded bytes, no URL, no file path).
var ErrUnprocessable = errors.New("unable to process media: no content, url, or filepath")

// Image represents an image attachment. Exactly one of URL, Filepath, or
// Content should be set.
type Image struct {
	URL      string
	Filepath string
	Content  []byte
	Format   string // e.g. "jpeg", "png"; defaults to "jpeg"
	Detail   string // provider hint: "low", "high", "auto"
}

// Audio represents an audio attachment. Content holds embedded bytes,
// URLContent holds bytes already resolved from URL, Filepath points at a
// local file.
type Audio struct {
	Content    []byte
	URL        string
	URLContent []byte
	Filepath   string
	Format     string // e.g. "mp3", "wav"; defaults to "mp3"
}

// Video represents a video attachment. No adapter currently supports video
// input; messages carrying one log a warning and drop it.
type Video struct {
	URL      string
	Filepath string
	Content  []byte
	Format   string
}

// SourceURL returns a URL suitable for an image content part: the remote URL
// when one is set, otherwise a base64 data URL built from the embedded bytes
// or the local file.
func (i Image) SourceURL() (string, error) {
	if i.URL != "" {
		return i.URL, nil
	}

	content := i.Content
	if content == nil && i.Filepath != "" {
		data, err := os.ReadFile(i.Filepath)
		if err != nil {
			return "", fmt.Errorf("failed to read image file: %w", err)
		}
		content = data
	}
	if content == nil {
		return "", ErrUnprocessable
	}

	format := i.Format
	if format == "" {
		format = formatFromPath(i.Filepath, "jpeg")
	}
	encoded := base64.StdEncoding.EncodeToString(content)
	return fmt.Sprintf("data:image/%s;base64,%s", format, encoded), nil
}

// Bytes resolves the raw audio bytes. Resolution order: embedded bytes, then
// URL content (fetched once if not already resolved), then the local file
// path. A missing file surfaces the underlying not-exist error so callers can
// fail before any network call is made.
func (a *Audio) Bytes() ([]byte, error) {
	if len(a.Content) > 0 {
		return a.Content, nil
	}

	if a.URL != "" {
		if len(a.URLContent) > 0 {
			return a.URLContent, nil
		}
		data, err := fetchURL(a.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch audio url: %w", err)
		}
		a.URLContent = data
		return data, nil
	}

	if a.Filepath != "" {
		data, err := os.ReadFile(a.Filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio file %s: %w", a.Filepath, err)
		}
		return data, nil
	}

	return nil, ErrUnprocessable
}

// FileFormat returns the declared format, or one inferred from the file path
// or URL, or the fallback.
func (a *Audio) FileFormat(fallback string) string {
	if a.Format != "" {
		return a.Format
	}
	if a.Filepath != "" {
		if f := formatFromPath(a.Filepath, ""); f != "" {
			return f
		}
	}
	if a.URL != "" {
		if f := formatFromPath(a.URL, ""); f != "" {
			return f
		}
	}
	return fallback
}

func formatFromPath(path, fallback string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fallback
	}
	return strings.ToLower(ext)
}

func fetchURL(url string) ([]byte, error) {
	resp, err := http.Get(url) //nolint:gosec // G107: caller-supplied media URL is intentional
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
