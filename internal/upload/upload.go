// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload accepts images from multipart forms and base64 data URIs
// and turns them into stable /uploads/images/ references.
package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/imaging"
	"github.com/olegiv/tcms-go/internal/store"
)

// Client-facing messages.
const (
	MsgNoFile          = "No image file provided"
	MsgNoImageData     = "No image data provided"
	MsgInvalidBase64   = "Invalid base64 image format"
	MsgInvalidImage    = "Invalid image data"
	MsgTooManyPixels   = "Image dimensions are too large"
	MsgUnsupportedType = "Only image files are allowed (jpeg, jpg, png, gif, webp)"
)

var dataURIRe = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

// Result is returned to the client after a successful upload.
type Result struct {
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	Size         int64  `json:"size,omitempty"`
	URL          string `json:"url"`
}

// Service stores uploaded images.
type Service struct {
	proc     *imaging.Processor
	maxBytes int64
}

// NewService creates an upload service. maxBytes limits the decoded size.
func NewService(proc *imaging.Processor, maxBytes int64) *Service {
	return &Service{proc: proc, maxBytes: maxBytes}
}

// MaxBytes returns the size limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// TooLargeMessage is the error shown when an upload exceeds the limit.
func (s *Service) TooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", s.maxBytes/(1<<20))
}

// SaveMultipart stores an image received as a multipart file.
func (s *Service) SaveMultipart(fh *multipart.FileHeader) (*Result, error) {
	if fh == nil {
		return nil, apperr.Upload(MsgNoFile)
	}
	if imaging.FormatFromExt(filepath.Ext(fh.Filename)) == "" {
		return nil, apperr.Upload(MsgUnsupportedType)
	}
	if fh.Size > s.maxBytes {
		return nil, apperr.Upload(s.TooLargeMessage())
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.Upload(s.TooLargeMessage())
	}

	res, err := s.store(data)
	if err != nil {
		return nil, err
	}
	res.OriginalName = filepath.Base(fh.Filename)
	return res, nil
}

// SaveBase64 stores an image received as a data URI. Values that are not
// image data URIs are treated as existing references and returned as is.
func (s *Service) SaveBase64(value string) (*Result, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperr.Upload(MsgNoImageData)
	}
	if !strings.HasPrefix(value, "data:image/") {
		return &Result{URL: value}, nil
	}

	m := dataURIRe.FindStringSubmatch(value)
	if m == nil {
		return nil, apperr.Upload(MsgInvalidBase64)
	}
	if imaging.FormatFromExt(m[1]) == "" {
		return nil, apperr.Upload(MsgUnsupportedType)
	}

	if int64(base64.StdEncoding.DecodedLen(len(m[2]))) > s.maxBytes+2 {
		return nil, apperr.Upload(s.TooLargeMessage())
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, apperr.Upload(MsgInvalidBase64)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.Upload(s.TooLargeMessage())
	}

	return s.store(data)
}

func (s *Service) store(data []byte) (*Result, error) {
	res, err := s.proc.Save(data)
	if errors.Is(err, imaging.ErrNotImage) {
		return nil, apperr.Upload(MsgInvalidImage)
	}
	if errors.Is(err, imaging.ErrTooManyPixels) {
		return nil, apperr.Upload(MsgTooManyPixels)
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Filename: res.Filename,
		Size:     res.Size,
		URL:      store.ImagesPrefix + res.Filename,
	}, nil
}
