package httpclient

import (
	"bytes"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"net/textproto"
	"slices"
)

const defaultFileType = "application/octet-stream"

// Form is a multipart/form-data request body. Fields are written in key
// order ahead of the files so sidecars see a stable layout. The whole body
// is held in memory and encoded again for every attempt.
type Form struct {
	Fields map[string]string
	Files  []File
}

// File is one uploaded part of a Form.
type File struct {
	// Field is the form field name ("file" for whisper, "audio" for the
	// embedding sidecar).
	Field string
	// Name is the file name reported to the sidecar.
	Name string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Data        []byte
}

// encode renders the form and returns it with its Content-Type header.
func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range slices.Sorted(maps.Keys(f.Fields)) {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.Files {
		part, err := w.CreatePart(file.header())
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (f File) header() textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     f.Field,
		"filename": f.Name,
	}))
	ct := f.ContentType
	if ct == "" {
		ct = defaultFileType
	}
	h.Set("Content-Type", ct)
	return h
}
