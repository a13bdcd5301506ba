// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

var nameRe = regexp.MustCompile(`^\d{13}_\d{1,3}\.(jpg|png|gif|webp)$`)

func TestDetectFormat(t *testing.T) {
	var jpg bytes.Buffer
	_ = jpeg.Encode(&jpg, createTestImage(4, 4), nil)
	var gf bytes.Buffer
	_ = gif.Encode(&gf, createTestImage(4, 4), nil)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", encodePNG(t, createTestImage(4, 4)), FormatPNG},
		{"jpeg", jpg.Bytes(), FormatJPEG},
		{"gif", gf.Bytes(), FormatGIF},
		{"text", []byte("hello world"), ""},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), ""},
		{"tiff", []byte("II*\x00\x08\x00\x00\x00"), ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := map[string]string{
		".jpg": FormatJPEG, "jpeg": FormatJPEG, ".PNG": FormatPNG,
		"gif": FormatGIF, "webp": FormatWebP, "svg+xml": "", "": "",
	}
	for in, want := range tests {
		if got := FormatFromExt(in); got != want {
			t.Errorf("FormatFromExt(%q) = %q, want %q", in, got, want)
		}
	}
	if Ext(FormatJPEG) != "jpg" || Ext(FormatWebP) != "webp" {
		t.Error("Ext() mapping wrong")
	}
}

func TestProcessorSave_PNG(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir, 0)

	res, err := p.Save(encodePNG(t, createTestImage(40, 20)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !nameRe.MatchString(res.Filename) {
		t.Errorf("Filename = %q, want {millis}_{n}.png", res.Filename)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Errorf("size = %dx%d, want 40x20", res.Width, res.Height)
	}

	info, err := os.Stat(filepath.Join(dir, ImagesDir, res.Filename))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if info.Size() != res.Size {
		t.Errorf("Size = %d, file has %d bytes", res.Size, info.Size())
	}
}

func TestProcessorSave_Downscales(t *testing.T) {
	p := NewProcessor(t.TempDir(), 50)

	res, err := p.Save(encodePNG(t, createTestImage(200, 100)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.Width != 50 || res.Height != 25 {
		t.Errorf("size = %dx%d, want 50x25", res.Width, res.Height)
	}
}

func TestProcessorSave_JPEGExtension(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(10, 10), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	res, err := NewProcessor(t.TempDir(), 0).Save(buf.Bytes())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(res.Filename) != ".jpg" {
		t.Errorf("Filename = %q, want .jpg", res.Filename)
	}
}

func TestProcessorSave_GIFVerbatim(t *testing.T) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, createTestImage(8, 8), nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	dir := t.TempDir()

	res, err := NewProcessor(dir, 4).Save(buf.Bytes())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	stored, _ := os.ReadFile(filepath.Join(dir, ImagesDir, res.Filename))
	if !bytes.Equal(stored, buf.Bytes()) {
		t.Error("GIF should be stored unchanged")
	}
}

func TestProcessorSave_Invalid(t *testing.T) {
	p := NewProcessor(t.TempDir(), 0)

	for name, data := range map[string][]byte{
		"text":      []byte("definitely not an image"),
		"truncated": encodePNG(t, createTestImage(10, 10))[:40],
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Save(data); !errors.Is(err, ErrNotImage) {
				t.Errorf("Save() error = %v, want ErrNotImage", err)
			}
		})
	}
}

// withPNGSize rewrites the IHDR chunk of an encoded PNG to declare the given
// dimensions, leaving the pixel data untouched.
func withPNGSize(data []byte, width, height uint32) []byte {
	out := bytes.Clone(data)
	// signature(8) length(4) "IHDR"(4) data(13) crc(4)
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessorSave_TooManyPixels(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir, 0)

	data := withPNGSize(encodePNG(t, createTestImage(1, 1)), 30000, 30000)
	if _, err := p.Save(data); !errors.Is(err, ErrTooManyPixels) {
		t.Fatalf("Save() error = %v, want ErrTooManyPixels", err)
	}
	if entries, _ := os.ReadDir(filepath.Join(dir, ImagesDir)); len(entries) != 0 {
		t.Errorf("stored %d files, want 0", len(entries))
	}

	// Within the budget the header passes and decoding fails on the short data.
	data = withPNGSize(encodePNG(t, createTestImage(1, 1)), 100, 100)
	if _, err := p.Save(data); !errors.Is(err, ErrNotImage) {
		t.Errorf("Save() error = %v, want ErrNotImage", err)
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(30, 10)
	tests := []struct {
		orientation int
		w, h        int
	}{
		{1, 30, 10}, {3, 30, 10}, {6, 10, 30}, {8, 10, 30}, {5, 10, 30},
	}
	for _, tt := range tests {
		b := applyOrientation(img, tt.orientation).Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("orientation %d: %dx%d, want %dx%d", tt.orientation, b.Dx(), b.Dy(), tt.w, tt.h)
		}
	}
}
