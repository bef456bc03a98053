package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessReencodesAsJPEG(t *testing.T) {
	out, err := Process(bytes.NewReader(encodePNG(t, 100, 60)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	// Small images pass through at their original size.
	if cfg.Width != 100 || cfg.Height != 60 {
		t.Errorf("size = %dx%d, want 100x60", cfg.Width, cfg.Height)
	}
}

func TestProcessDownscalesLargeImages(t *testing.T) {
	out, err := Process(bytes.NewReader(encodePNG(t, MaxDimension*2, MaxDimension)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if cfg.Width != MaxDimension || cfg.Height != MaxDimension/2 {
		t.Errorf("size = %dx%d, want %dx%d (aspect preserved)",
			cfg.Width, cfg.Height, MaxDimension, MaxDimension/2)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	if _, err := Process(strings.NewReader("<html>not an image</html>")); err == nil {
		t.Fatal("HTML accepted as an image")
	}
	if _, err := Process(bytes.NewReader([]byte("GIF89a....."))); err == nil {
		t.Fatal("GIF accepted, only JPEG and PNG are allowed")
	}
}
