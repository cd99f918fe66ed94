// Package form encodes multipart/form-data request bodies for file uploads.
package form

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrEmptyFieldName = errors.New("form field name is empty")

// File is a file part of a multipart body.
type File struct {
	// Field is the form field name (e.g. "file")
	Field string

	// Name is the filename reported to the server. Only the base name is sent.
	Name string

	// Data is the file content.
	Data []byte
}

// Body is an encoded multipart body. The same Body can be sent more than once, so a request
// built from it can be retried without re-reading the source file.
type Body struct {
	Data        []byte
	ContentType string
}

// Reader returns a fresh reader over the encoded body.
func (b *Body) Reader() *bytes.Reader {
	return bytes.NewReader(b.Data)
}

// Encode writes fields and files into a multipart body. Fields are written in sorted key order
// so the output is deterministic for a given boundary.
func Encode(fields map[string]string, files ...File) (*Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if k == "" {
			return nil, ErrEmptyFieldName
		}
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("writing field %q: %w", k, err)
		}
	}

	for _, f := range files {
		if f.Field == "" {
			return nil, ErrEmptyFieldName
		}
		part, err := w.CreatePart(fileHeader(f))
		if err != nil {
			return nil, fmt.Errorf("creating part for %q: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("writing part for %q: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	return &Body{Data: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}

// DetectType returns the MIME type of data, sniffed from its content. Plain text files come
// back with a charset parameter, e.g. "text/plain; charset=utf-8".
func DetectType(data []byte) string {
	return mimetype.Detect(data).String()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(f File) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.Field), quoteEscaper.Replace(filepath.Base(f.Name))))
	h.Set("Content-Type", DetectType(f.Data))
	return h
}
