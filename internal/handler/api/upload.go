// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/tcms-go/internal/apperr"
	"github.com/olegiv/tcms-go/internal/upload"
)

// MsgUploaded is returned after an image is stored.
const MsgUploaded = "Image uploaded successfully"

// multipartOverhead is the room left for multipart framing above the file
// size limit.
const multipartOverhead = 1 << 20

// UploadImage handles POST /upload with a multipart "image" field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	limit := h.uploads.MaxBytes() + multipartOverhead
	if r.ContentLength > limit {
		h.writeError(w, r, apperr.Upload(h.uploads.TooLargeMessage()))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.uploads.MaxBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperr.Upload(h.uploads.TooLargeMessage()))
			return
		}
		h.writeError(w, r, apperr.Upload(upload.MsgNoFile))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	_, fh, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, apperr.Upload(upload.MsgNoFile))
		return
	}

	res, err := h.uploads.SaveMultipart(fh)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "image uploaded", "filename", res.Filename, "size", res.Size)
	WriteMessage(w, MsgUploaded, res)
}

// UploadBase64 handles POST /upload/base64 with a JSON {image} body.
// Values that are not image data URIs are echoed back as the url.
func (h *Handler) UploadBase64(w http.ResponseWriter, r *http.Request) {
	// base64 inflates by 4/3
	limit := h.uploads.MaxBytes()/3*4 + multipartOverhead
	input, err := decodeJSONLimit(w, r, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.uploads.SaveBase64(stringField(input, "image"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if res.Filename == "" {
		WriteSuccess(w, res)
		return
	}
	h.logger.InfoContext(r.Context(), "image uploaded", "filename", res.Filename, "size", res.Size)
	WriteMessage(w, MsgUploaded, res)
}
