package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/repository"
)

// Verificar en tiempo de compilación que Client implementa los puertos.
var (
	_ repository.ReadModelSource = (*Client)(nil)
	_ repository.RunResultSource = (*Client)(nil)
	_ repository.RunStreamOpener = (*Client)(nil)
)

// FetchInventory GET /inventory.
func (c *Client) FetchInventory(ctx context.Context) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	if err := c.getJSON(ctx, repository.ResourceInventory, c.backend.InventoryPath, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchPurchaseOrders GET /purchase-orders.
func (c *Client) FetchPurchaseOrders(ctx context.Context) ([]entity.PurchaseOrder, error) {
	var orders []entity.PurchaseOrder
	if err := c.getJSON(ctx, repository.ResourcePurchaseOrders, c.backend.OrdersPath, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchSLAViolations GET /sla-violations.
func (c *Client) FetchSLAViolations(ctx context.Context) ([]entity.SLAViolation, error) {
	var violations []entity.SLAViolation
	if err := c.getJSON(ctx, repository.ResourceSLAViolations, c.backend.ViolationsPath, &violations); err != nil {
		return nil, err
	}
	return violations, nil
}

// FetchMetrics GET de métricas opcionales; enabled=false si BACKEND_METRICS_PATH está vacío.
func (c *Client) FetchMetrics(ctx context.Context) (map[string]json.RawMessage, bool, error) {
	if c.backend.MetricsPath == "" {
		return nil, false, nil
	}
	var metrics map[string]json.RawMessage
	if err := c.getJSON(ctx, repository.ResourceMetrics, c.backend.MetricsPath, &metrics); err != nil {
		return nil, true, err
	}
	return metrics, true, nil
}

// FetchRunResult GET /run: ejecuta el job y devuelve el payload combinado.
// Sin reintentos ni circuit breaker: repetir la llamada volvería a ejecutar el job.
func (c *Client) FetchRunResult(ctx context.Context) (*entity.RunResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.backend.BaseURL+c.backend.RunPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: run: crear request: %w", domain.ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: run: %w", domain.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("%w: run: %w", domain.ErrFetchFailure, err)
	}

	var result entity.RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: run: %v", domain.ErrMalformedPayload, err)
		}
		return nil, fmt.Errorf("%w: run: leer respuesta: %w", domain.ErrFetchFailure, err)
	}
	return &result, nil
}
