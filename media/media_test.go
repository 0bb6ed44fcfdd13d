package media

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageSourceURLPrefersRemoteURL(t *testing.T) {
	img := Image{URL: "https://example.com/cat.png", Content: []byte("ignored")}
	url, err := img.SourceURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://example.com/cat.png" {
		t.Errorf("expected remote URL to be used, got %s", url)
	}
}

func TestImageSourceURLEncodesContent(t *testing.T) {
	img := Image{Content: []byte{0x01, 0x02}, Format: "png"}
	url, err := img.SourceURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("expected data URL with png media type, got %s", url)
	}
}

func TestImageSourceURLDefaultsToJPEG(t *testing.T) {
	img := Image{Content: []byte{0x01}}
	url, err := img.SourceURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("expected jpeg fallback, got %s", url)
	}
}

func TestImageSourceURLEmpty(t *testing.T) {
	img := Image{}
	if _, err := img.SourceURL(); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("expected ErrUnprocessable, got %v", err)
	}
}

func TestAudioBytesPrefersEmbeddedContent(t *testing.T) {
	a := Audio{Content: []byte("raw"), URLContent: []byte("fetched")}
	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "raw" {
		t.Errorf("expected embedded content, got %q", data)
	}
}

func TestAudioBytesUsesResolvedURLContent(t *testing.T) {
	a := Audio{URL: "https://example.com/a.mp3", URLContent: []byte("fetched")}
	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "fetched" {
		t.Errorf("expected URL content, got %q", data)
	}
}

func TestAudioBytesReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("wavdata"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := Audio{Filepath: path}
	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "wavdata" {
		t.Errorf("expected file content, got %q", data)
	}
}

func TestAudioBytesMissingFile(t *testing.T) {
	a := Audio{Filepath: filepath.Join(t.TempDir(), "nope.mp3")}
	_, err := a.Bytes()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestAudioBytesNoSource(t *testing.T) {
	a := Audio{}
	if _, err := a.Bytes(); !errors.Is(err, ErrUnprocessable) {
		t.Errorf("expected ErrUnprocessable, got %v", err)
	}
}

func TestAudioFileFormat(t *testing.T) {
	tests := []struct {
		name     string
		audio    Audio
		fallback string
		want     string
	}{
		{"explicit", Audio{Format: "ogg"}, "mp3", "ogg"},
		{"from filepath", Audio{Filepath: "/tmp/voice.WAV"}, "mp3", "wav"},
		{"from url", Audio{URL: "https://example.com/a.flac"}, "mp3", "flac"},
		{"fallback", Audio{}, "mp3", "mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.audio.FileFormat(tt.fallback); got != tt.want {
				t.Errorf("FileFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
