package shared

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// Upload is a file taken from a multipart form.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
	closer      io.Closer
}

func (u *Upload) Close() error {
	if u == nil || u.closer == nil {
		return nil
	}
	return u.closer.Close()
}

func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// ParseMultipart parses the form within maxBytes of memory; larger parts
// spill to temporary files.
func ParseMultipart(r *http.Request, maxBytes int64) error {
	return r.ParseMultipartForm(maxBytes)
}

// FormFile returns the named file part, or nil when the form has none.
func FormFile(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Upload{
		FileName:    filepath.Base(header.Filename),
		ContentType: contentType(header),
		Body:        file,
		closer:      file,
	}, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
