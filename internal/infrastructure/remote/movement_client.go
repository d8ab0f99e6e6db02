// Package remote implementa la fuente de movimientos sobre la API REST de inventario.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

// Verificar en tiempo de compilación que MovementClient implementa MovementSource.
var _ repository.MovementSource = (*MovementClient)(nil)

const (
	movementsPath   = "/api/movimientos-inventario/"
	maxResponseSize = 32 << 20
)

// MovementClient consulta GET /api/movimientos-inventario/ con los filtros como query string.
type MovementClient struct {
	baseURL    string
	token      string
	loc        *time.Location
	httpClient *http.Client
}

// NewMovementClient construye el cliente. token puede estar vacío; loc interpreta fechas sin zona.
func NewMovementClient(baseURL, token string, timeout time.Duration, loc *time.Location) *MovementClient {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MovementClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		loc:        loc,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchMovements descarga y decodifica los movimientos.
func (c *MovementClient) FetchMovements(ctx context.Context, q repository.MovementQuery) ([]entity.MovementRecord, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("remote: SOURCE_BASE_URL no configurado")
	}
	endpoint := c.baseURL + movementsPath
	if params := q.Params(); len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("remote: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("remote: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("remote: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return decodeMovements(body, c.loc)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
