package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/repository"
)

// OpenRunStream abre GET BaseURL+StreamPath como text/event-stream.
// La conexión vive mientras ctx no se cancele y el servidor no la cierre.
func (c *Client) OpenRunStream(ctx context.Context) (repository.RunStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.backend.BaseURL+c.backend.StreamPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: crear request: %v", domain.ErrStreamTransport, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStreamTransport, err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrStreamTransport, err)
	}
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != "text/event-stream" {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: content-type inesperado %q", domain.ErrStreamTransport, resp.Header.Get("Content-Type"))
	}

	c.log.Debug().Str("path", c.backend.StreamPath).Msg("stream de ejecución abierto")
	return &sseStream{body: resp.Body, decoder: NewSSEDecoder(resp.Body)}, nil
}

type sseStream struct {
	body    io.ReadCloser
	decoder *SSEDecoder
}

func (s *sseStream) Next(ctx context.Context) (entity.StreamEvent, error) {
	if err := ctx.Err(); err != nil {
		return entity.StreamEvent{}, fmt.Errorf("%w: %w", domain.ErrStreamTransport, err)
	}
	ev, err := s.decoder.Next()
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, domain.ErrStreamTransport) {
		return ev, err
	}
	return entity.StreamEvent{}, fmt.Errorf("%w: %w", domain.ErrStreamTransport, err)
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
