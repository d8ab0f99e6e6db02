package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

const snapshot = `{"movimientos": [
  {"id_mvin": 1, "cantidad": 10, "fecha": "2025-03-02T10:00:00Z", "producto_nombre": "Azúcar", "producto_codigo": "AZ-1",
   "tipo_movimiento": "entrada", "stock_actual": 30, "usuario_nombre": "José Muñoz"},
  {"id_mvin": 2, "cantidad": 4, "fecha": "2025-03-03T10:00:00Z", "producto_nombre": "Azúcar", "producto_codigo": "AZ-1",
   "tipo_movimiento": "salida", "stock_actual": 26},
  {"id_mvin": 3, "cantidad": 7, "fecha": "2025-03-04T10:00:00Z", "producto_nombre": "Sal", "producto_codigo": "S-1",
   "tipo_movimiento": "salida", "stock_actual": 3}
]}`

func writeSnapshot(t *testing.T, body []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movimientos.json")
	require.NoError(t, os.WriteFile(path, body, 0o644))
	return path
}

func xlsxRows(t *testing.T, dir string) [][]string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "bitacora_movimientos_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	f, err := excelize.OpenFile(matches[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Movimientos")
	require.NoError(t, err)
	return rows
}

func TestRun_ExportaAmbosFormatos(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-archivo", writeSnapshot(t, []byte(snapshot)), "-salida", out}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Contains(t, stdout.String(), "2 productos, 3 movimientos visibles")
	pdfs, _ := filepath.Glob(filepath.Join(out, "*.pdf"))
	assert.Len(t, pdfs, 1)
	assert.Len(t, xlsxRows(t, out), 4)
}

func TestRun_FiltroYBusqueda(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	args := []string{"-archivo", writeSnapshot(t, []byte(snapshot)), "-salida", out, "-formato", "xlsx", "-tipo", "salida", "-buscar", "az-"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())

	rows := xlsxRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1][0])
}

func TestRun_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(snapshot))
	require.NoError(t, err)
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	args := []string{"-archivo", writeSnapshot(t, encoded), "-charset", "latin1", "-salida", out, "-formato", "xlsx"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())

	rows := xlsxRows(t, out)
	assert.Equal(t, "Azúcar", rows[1][4])
}

func TestRun_LimiteDeProductos(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	args := []string{"-archivo", writeSnapshot(t, []byte(snapshot)), "-salida", out, "-formato", "xlsx", "-limite", "1"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())

	// Sal tiene el movimiento más reciente
	assert.Contains(t, stdout.String(), "1 productos, 1 movimientos visibles")
	rows := xlsxRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[1][0])
}

func TestParseFlags_AlcanceConArchivo_Rechazado(t *testing.T) {
	for _, flagName := range []string{"-bodega", "-sucursal"} {
		t.Run(flagName, func(t *testing.T) {
			var stderr bytes.Buffer
			_, err := parseFlags([]string{"-archivo", "movimientos.json", flagName, "2"}, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no aplican con -archivo")
		})
	}

	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-bodega", "2"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "2", o.bodega)
}

func TestRun_Errores(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := writeSnapshot(t, []byte(snapshot))

	err := run(context.Background(), []string{"-archivo", path, "-formato", "csv"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-archivo", path, "-desde", "03/01/2025", "-salida", t.TempDir()}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-archivo", path, "-limite", "0", "-salida", t.TempDir()}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-archivo", filepath.Join(t.TempDir(), "no-existe.json")}, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "abrir instantánea"))
}
