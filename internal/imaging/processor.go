// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates uploaded images, normalizes them and stores
// them under the uploads directory.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Image formats accepted for upload.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
)

// ImagesDir is the subdirectory of the uploads directory holding images.
const ImagesDir = "images"

// jpegQuality is used when re-encoding JPEG uploads.
const jpegQuality = 90

// MaxPixels caps width*height of an upload. Dimensions are read from the
// header before any pixel data is decoded.
const MaxPixels = 40_000_000

var (
	// ErrNotImage is returned when the bytes are not a decodable image of an
	// accepted format.
	ErrNotImage = errors.New("invalid image data")
	// ErrTooManyPixels is returned when the declared dimensions exceed MaxPixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
)

// Result describes a stored image.
type Result struct {
	Filename string // base name inside ImagesDir
	Format   string
	Width    int
	Height   int
	Size     int64
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	uploadDir    string
	maxDimension int
	now          func() time.Time
}

// NewProcessor creates a processor writing to <uploadDir>/images. Images
// whose longer side exceeds maxDimension are scaled down (0 = no limit).
func NewProcessor(uploadDir string, maxDimension int) *Processor {
	return &Processor{
		uploadDir:    uploadDir,
		maxDimension: maxDimension,
		now:          time.Now,
	}
}

// Dir returns the directory images are written to.
func (p *Processor) Dir() string {
	return filepath.Join(p.uploadDir, ImagesDir)
}

// Save validates and stores an image. JPEG and PNG are re-encoded with EXIF
// orientation applied, metadata stripped and size capped; GIF and WebP are
// stored as received so animation survives.
func (p *Processor) Save(data []byte) (*Result, error) {
	format := DetectFormat(data)
	if format == "" {
		return nil, ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNotImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}

	out := data
	if format == FormatJPEG || format == FormatPNG {
		img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
		if p.maxDimension > 0 {
			b := img.Bounds()
			if b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
				img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
			}
		}
		if out, err = encodeImage(img, format); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
	}

	name, err := p.write(Ext(format), out)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &Result{
		Filename: name,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Size:     int64(len(out)),
	}, nil
}

// write stores data under a fresh "{unixMillis}_{0..999}.{ext}" name.
func (p *Processor) write(ext string, data []byte) (string, error) {
	dir := p.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	for range 10 {
		name := fmt.Sprintf("%d_%d.%s", p.now().UnixMilli(), rand.IntN(1000), ext)
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to save image: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("failed to save image: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to save image: %w", err)
		}
		return name, nil
	}
	return "", errors.New("failed to save image: no free file name")
}

// Ext returns the file extension used for a format.
func Ext(format string) string {
	if format == FormatJPEG {
		return "jpg"
	}
	return format
}

// FormatFromExt maps a file extension or a data URI subtype to a format.
func FormatFromExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	default:
		return ""
	}
}

// DetectFormat detects the image format from raw bytes.
func DetectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return FormatJPEG
	case strings.Contains(contentType, "png"):
		return FormatPNG
	case strings.Contains(contentType, "gif"):
		return FormatGIF
	case strings.Contains(contentType, "webp"):
		return FormatWebP
	default:
		return ""
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == FormatPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
