package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/inventory"
	"github.com/ordena/bitacora-api/internal/domain/repository"
	"github.com/ordena/bitacora-api/internal/infrastructure/remote"
)

const payload = `{
  "movimientos": [
    {
      "id_mvin": 10, "cantidad": 5, "fecha": "2025-03-02T10:00:00Z",
      "producto_nombre": "Arroz", "producto_codigo": "A-01", "producto_id": 77,
      "usuario_nombre": "Camila Rojas", "tipo_movimiento": "entrada",
      "stock_actual": 25, "stock_antes": "20", "stock_despues": 25,
      "motivo": "Compra", "sucursal_fk": {"id": 3, "nombre_sucursal": "Sucursal Centro"}
    },
    {
      "id_mvin": "11", "cantidad": "2.5", "fecha": "2025-03-02 08:30:00",
      "producto_nombre": "Sal", "producto_codigo": "S-01", "producto_id": null,
      "tipo_movimiento": "TRASLADO", "stock_actual": null, "bodega_fk": 1
    },
    {
      "id_mvin": 12, "cantidad": 1, "fecha": null,
      "producto_nombre": "Sal", "producto_codigo": "S-01", "tipo_movimiento": "salida",
      "ubicacion": "Bodega Norte", "sucursal_fk": "4"
    }
  ],
  "estadisticas": {"total_movimientos": 3}
}`

func TestMovementClient_DecodificaFormatosMixtos(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := remote.NewMovementClient(srv.URL+"/", "tok", time.Second, time.UTC)
	q := repository.MovementQuery{
		Scope:  repository.Scope{SucursalID: "3"},
		Filter: inventory.MovementFilter{Kind: entity.MovementKindEntry},
	}
	records, err := client.FetchMovements(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "/api/movimientos-inventario/", gotPath)
	assert.Equal(t, "sucursal=3&tipo_movimiento=ENTRADA", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)

	require.Len(t, records, 3)

	a := records[0]
	assert.Equal(t, int64(10), a.ID)
	assert.Equal(t, entity.MovementKindEntry, a.Kind)
	assert.Equal(t, "5", a.Quantity.String())
	require.NotNil(t, a.ProductID)
	assert.Equal(t, int64(77), *a.ProductID)
	require.NotNil(t, a.StockBefore)
	assert.Equal(t, "20", a.StockBefore.String())
	assert.Equal(t, "Sucursal Centro", a.Location)
	assert.True(t, a.Timestamp.Equal(time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)))

	b := records[1]
	assert.Equal(t, int64(11), b.ID)
	assert.Equal(t, "2.5", b.Quantity.String())
	assert.Nil(t, b.ProductID)
	assert.Nil(t, b.StockAfter)
	assert.True(t, b.CurrentStock.IsZero())
	assert.Equal(t, entity.MovementKind("TRASLADO"), b.Kind)
	assert.Equal(t, "Bodega 1", b.Location)
	assert.True(t, b.HasTimestamp())

	c := records[2]
	assert.False(t, c.HasTimestamp())
	assert.Equal(t, "Bodega Norte", c.Location, "ubicacion explícita tiene prioridad")
}

func TestMovementClient_ArregloDirecto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id_mvin": 1, "cantidad": 3, "producto_nombre": "Té", "producto_codigo": "T-1", "tipo_movimiento": "ajuste"}]`))
	}))
	defer srv.Close()

	records, err := remote.NewMovementClient(srv.URL, "", time.Second, nil).FetchMovements(context.Background(), repository.MovementQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.MovementKindAdjustment, records[0].Kind)
}

func TestMovementClient_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "mantenimiento", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := remote.NewMovementClient(srv.URL, "", time.Second, nil).FetchMovements(context.Background(), repository.MovementQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestMovementClient_JSONInvalido(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"movimientos": [{"id_mvin": 1,`))
	}))
	defer srv.Close()

	_, err := remote.NewMovementClient(srv.URL, "", time.Second, nil).FetchMovements(context.Background(), repository.MovementQuery{})
	assert.Error(t, err)
}

func TestMovementClient_SinURL(t *testing.T) {
	_, err := remote.NewMovementClient("", "", time.Second, nil).FetchMovements(context.Background(), repository.MovementQuery{})
	assert.Error(t, err)
}

func TestDecodeSnapshot_FechaSinZonaUsaLocalizacion(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	records, err := remote.DecodeSnapshot([]byte(`{"movimientos":[{"id_mvin":1,"cantidad":1,"fecha":"2025-01-15T12:00:00","tipo_movimiento":"entrada"}]}`), loc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Timestamp.Equal(time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)))
}

func TestDecodeSnapshot_CamposMalformadosNoDescartanElLote(t *testing.T) {
	body := `{"movimientos": [
		{"id_mvin": 1, "cantidad": "", "fecha": "2025-01-15T12:00:00Z", "producto_nombre": "Arroz", "producto_codigo": "A-01", "tipo_movimiento": "entrada", "stock_actual": 10},
		{"id_mvin": 2, "cantidad": 5, "fecha": 1736942400, "producto_nombre": "Arroz", "producto_codigo": "A-01", "tipo_movimiento": "salida", "stock_actual": "N/A"},
		{"id_mvin": "3", "cantidad": "7,5", "fecha": "no es fecha", "producto_nombre": "Sal", "producto_codigo": 1001, "tipo_movimiento": null, "stock_antes": {"x": 1}, "producto_id": "abc"},
		null,
		42,
		{"id_mvin": 4, "cantidad": 2, "fecha": "2025-01-16", "producto_nombre": "Harina", "producto_codigo": "H-01", "tipo_movimiento": "AJUSTE", "stock_actual": "12.5", "sucursal_fk": {"id": "x", "nombre_sucursal": 9}}
	]}`

	records, err := remote.DecodeSnapshot([]byte(body), time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 4, "solo se omiten los elementos que no son objetos")

	assert.Equal(t, int64(1), records[0].ID)
	assert.True(t, records[0].Quantity.IsZero(), "cantidad vacía queda en cero")
	assert.True(t, records[0].HasTimestamp())
	assert.Equal(t, "10", records[0].CurrentStock.String())

	assert.False(t, records[1].HasTimestamp(), "fecha numérica queda sin fecha")
	assert.True(t, records[1].CurrentStock.IsZero(), "stock no numérico queda en cero")
	assert.Equal(t, "5", records[1].Quantity.String())

	assert.Equal(t, int64(3), records[2].ID)
	assert.Equal(t, "7.5", records[2].Quantity.String())
	assert.Equal(t, "1001", records[2].ProductCode)
	assert.False(t, records[2].HasTimestamp())
	assert.Equal(t, entity.MovementKind(""), records[2].Kind)
	assert.Nil(t, records[2].StockBefore)
	assert.Nil(t, records[2].ProductID)

	assert.Equal(t, entity.MovementKindAdjustment, records[3].Kind)
	assert.Equal(t, "12.5", records[3].CurrentStock.String())
	assert.Equal(t, "9", records[3].Location)
}
