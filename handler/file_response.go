package handler

import (
	"mime"
	"net/http"
	"strconv"
)

type fileResponse struct {
	filename    string
	contentType string
	data        []byte
	inline      bool
	header      http.Header
}

func (f fileResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for k, v := range f.header {
		w.Header()[k] = v
	}

	disposition := "attachment"
	if f.inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(f.data)
	return err
}

// FileOption configures a file response.
type FileOption func(*fileResponse)

// WithInline asks the browser to display the file instead of saving it.
func WithInline() FileOption {
	return func(f *fileResponse) { f.inline = true }
}

// WithFileHeader sets an extra response header.
func WithFileHeader(key, value string) FileOption {
	return func(f *fileResponse) {
		if f.header == nil {
			f.header = http.Header{}
		}
		f.header.Set(key, value)
	}
}

// File sends data as a download named filename.
func File(filename, contentType string, data []byte, opts ...FileOption) Response {
	f := &fileResponse{filename: filename, contentType: contentType, data: data}
	for _, opt := range opts {
		opt(f)
	}
	return f
}
