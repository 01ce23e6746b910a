package vap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Formats a stored document can be fetched in.
const (
	FormatOriginal = ""
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
)

// DocumentURL builds the absolute location of a server-controlled document path.
// PDF and DOCX renditions live next to the base path with their extension appended.
func (c *Client) DocumentURL(path, format string) (string, error) {
	switch format {
	case FormatOriginal:
		return c.url(path), nil
	case FormatPDF:
		return c.url(path) + ".pdf", nil
	case FormatDOCX:
		return c.url(path) + ".docx", nil
	default:
		return "", fmt.Errorf("unsupported document format %q", format)
	}
}

// Download copies the document at path into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, path, format string, w io.Writer) (int64, error) {
	cl := call{
		op:       "download document",
		fallback: "Failed to download document",
		method:   http.MethodGet,
	}

	target, err := c.DocumentURL(path, format)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, nil)
	if err != nil {
		return 0, &Error{Kind: KindTransport, Op: cl.op, Message: networkErrorMessage, Err: err}
	}
	req = c.setHeaders(req, true)
	req.Header.Set("Accept", "*/*")

	resp, err := c.request(req)
	if err != nil {
		return 0, transportError(cl.op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, serverError(cl, resp, data)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transportError(cl.op, fmt.Errorf("copy body: %w", err))
	}

	c.logger.Debug("document downloaded", zap.String("url", target), zap.Int64("bytes", n))

	return n, nil
}

// PDFPages opens data as a PDF and returns its page count.
func PDFPages(data []byte) (pages int, err error) {
	// The pdf reader panics on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("open pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}

	return reader.NumPage(), nil
}
