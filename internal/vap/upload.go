package vap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// UploadField is the multipart field the backend reads the profile document from.
const UploadField = "resume"

// Document types accepted as developer profiles.
var allowedDocumentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

var ErrUnsupportedDocument = errors.New("unsupported document type: expected PDF, DOC, DOCX or plain text")

// Upload is a profile document ready to be sent.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// NewUpload detects the content type of data and rejects anything that is not a supported document.
func NewUpload(fileName string, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("document %q is empty", fileName)
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range allowedDocumentTypes {
			if m.Is(allowed) {
				return &Upload{
					FileName:    filepath.Base(fileName),
					ContentType: detected.String(),
					Data:        data,
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("%w (got %s)", ErrUnsupportedDocument, detected.String())
}

// LoadUpload reads a document from fs.
func LoadUpload(fs afero.Fs, path string) (*Upload, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", path, err)
	}

	return NewUpload(path, data)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) sendMultipart(ctx context.Context, cl call, fields map[string]string, doc *Upload, target any) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	logFields := []zap.Field{zap.String("op", cl.op)}
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return &Error{Kind: KindTransport, Op: cl.op, Message: cl.fallback, Err: err}
		}
		logFields = append(logFields, zap.String("field_"+key, val))
	}

	if doc != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			UploadField, quoteEscaper.Replace(doc.FileName)))
		h.Set("Content-Type", doc.ContentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return &Error{Kind: KindTransport, Op: cl.op, Message: cl.fallback, Err: err}
		}
		if _, err := part.Write(doc.Data); err != nil {
			return &Error{Kind: KindTransport, Op: cl.op, Message: cl.fallback, Err: err}
		}

		logFields = append(logFields,
			zap.String("file_name", doc.FileName),
			zap.String("file_type", doc.ContentType),
			zap.Int("file_size", len(doc.Data)),
		)
	}
	if err := w.Close(); err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Message: cl.fallback, Err: err}
	}

	c.logger.Debug("multipart form", logFields...)

	req, err := http.NewRequestWithContext(ctx, cl.method, c.url(cl.path), &b)
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Message: networkErrorMessage, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	data, err := c.exchange(req, cl)
	if err != nil {
		return err
	}

	return decode(cl.op, data, target)
}
