// Package backend implementa los adaptadores HTTP contra el backend de supply-chain:
// consultas JSON de los modelos de lectura, la acción combinada GET /run y el stream SSE.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/pkg/config"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// maxErrorBody bytes del cuerpo que se conservan en un APIError.
const maxErrorBody = 512

// APIError respuesta no-2xx del backend.
type APIError struct {
	StatusCode int
	Body       string // primeros 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Transient indica si vale la pena reintentar (429 y 5xx).
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client cliente del backend con base URL, reintentos con backoff y un circuit breaker por recurso.
type Client struct {
	backend config.BackendConfig
	fetch   config.FetchConfig
	log     *logger.Logger

	httpClient   *http.Client // consultas de recursos (con timeout)
	streamClient *http.Client // stream y GET /run: conexiones largas, sin timeout global

	breakersMu sync.Mutex
	breakers   map[string]*gobreaker.CircuitBreaker
	observer   BreakerObserver
}

// BreakerObserver recibe los cambios de estado de los circuit breakers (numeración de gobreaker.State).
type BreakerObserver interface {
	BreakerStateChanged(resource string, state int)
}

// Option configura el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el cliente usado para las consultas de recursos.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStreamClient reemplaza el cliente usado para el stream y la acción de inicio.
func WithStreamClient(hc *http.Client) Option {
	return func(c *Client) { c.streamClient = hc }
}

// WithBreakerObserver registra el receptor de cambios de estado de los breakers.
func WithBreakerObserver(o BreakerObserver) Option {
	return func(c *Client) { c.observer = o }
}

// New construye el cliente a partir de la configuración del backend.
func New(backendCfg config.BackendConfig, fetchCfg config.FetchConfig, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		backend:      backendCfg,
		fetch:        fetchCfg,
		log:          log.Component("backend_client"),
		httpClient:   &http.Client{Timeout: fetchCfg.Timeout},
		streamClient: &http.Client{},
		breakers:     make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// breaker devuelve el circuit breaker del recurso, creándolo la primera vez.
func (c *Client) breaker(resource string) *gobreaker.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()
	if cb, ok := c.breakers[resource]; ok {
		return cb
	}
	threshold := uint32(c.fetch.BreakerThreshold)
	if threshold == 0 {
		threshold = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        resource,
		MaxRequests: 1,
		Timeout:     c.fetch.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("resource", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker cambió de estado")
			if c.observer != nil {
				c.observer.BreakerStateChanged(name, int(to))
			}
		},
	})
	c.breakers[resource] = cb
	return cb
}

// getJSON consulta path y deserializa el cuerpo en dest.
// Reintenta fallos transitorios (red, 429, 5xx) con backoff exponencial; un 4xx o un
// breaker abierto cortan de inmediato. Todo fallo final envuelve domain.ErrFetchFailure.
func (c *Client) getJSON(ctx context.Context, resource, path string, dest any) error {
	cb := c.breaker(resource)

	op := func() error {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, c.doGet(ctx, path, dest)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.fetch.RetryInitial
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 200 * time.Millisecond
	}
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.fetch.MaxRetries)), ctx),
		func(err error, wait time.Duration) {
			attempt++
			c.log.Debug().Str("resource", resource).Int("attempt", attempt).Dur("wait", wait).Err(err).
				Msg("reintentando consulta")
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrFetchFailure, resource, err)
	}
	return nil
}

// doGet una única petición GET JSON.
func (c *Client) doGet(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.backend.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// checkStatus convierte una respuesta no-2xx en *APIError.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

// decodeError cuerpo 2xx que no es JSON válido: no se reintenta.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "respuesta JSON inválida: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var decErr *decodeError
	if errors.As(err, &decErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Errores de conexión (reset, EOF inesperado) sin tipo de red explícito.
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
