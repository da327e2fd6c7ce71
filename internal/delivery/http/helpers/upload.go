package helpers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"eventdesk/internal/domain"
)

const maxUploadBytes = 5 << 20 // 5 MiB per image

// IsMultipart reports whether the request carries a multipart form body.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// ReadImageUpload extracts the optional "image" file from a multipart form
// request. It returns (nil, nil) when the request is not multipart or the
// field is absent.
func ReadImageUpload(r *http.Request) (*domain.AssetUpload, error) {
	if !IsMultipart(r) {
		return nil, nil
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image field: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxUploadBytes)
	}
	return &domain.AssetUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
