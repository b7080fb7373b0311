package removal

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cutout-studio/internal/logging"

	_ "golang.org/x/image/webp"
)

// HTTPRemover posts the image to an inference service and decodes the
// cutout it returns. The request is multipart/form-data with the PNG in the
// "image" field; the response body is the cutout as PNG or WebP.
type HTTPRemover struct {
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// NewHTTP creates an HTTP backend. A zero timeout means no client timeout;
// the request context still applies.
func NewHTTP(endpoint string, timeout time.Duration) *HTTPRemover {
	return &HTTPRemover{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      logging.For("removal.http"),
	}
}

// Remove implements Remover.
func (h *HTTPRemover) Remove(ctx context.Context, img image.Image, progress ProgressFunc) (image.Image, error) {
	Report(progress, 0)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "image.png")
	if err != nil {
		return nil, fmt.Errorf("%w: create form file: %w", ErrRemovalFailed, err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("%w: encode upload: %w", ErrRemovalFailed, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: close form: %w", ErrRemovalFailed, err)
	}
	Report(progress, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %w", ErrRemovalFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "image/png, image/webp")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrRemovalFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRemovalFailed, err)
	}
	h.log.Debug("inference response", "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemovalFailed, resp.StatusCode, msg)
	}
	Report(progress, 90)

	out, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRemovalFailed, err)
	}
	Report(progress, 100)
	return out, nil
}
