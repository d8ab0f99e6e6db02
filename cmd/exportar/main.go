// exportar genera la bitácora de movimientos en XLSX y/o PDF sin levantar el servidor.
//
// Uso:
//
//	go run ./cmd/exportar -archivo movimientos.json -formato ambos -salida ./out
//	go run ./cmd/exportar -tipo SALIDA -desde 2025-03-01 -hasta 2025-03-31 -sucursal 3
//	go run ./cmd/exportar -dias 7 -limite 20 -bodega 2
//
// Con -archivo lee una instantánea en el formato de la API (/api/movimientos-inventario/);
// sin él consulta la fuente configurada (SOURCE_DRIVER).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ordena/bitacora-api/internal/application/dto"
	"github.com/ordena/bitacora-api/internal/application/history"
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
	"github.com/ordena/bitacora-api/internal/infrastructure/export"
	infrapdf "github.com/ordena/bitacora-api/internal/infrastructure/pdf"
	"github.com/ordena/bitacora-api/internal/infrastructure/remote"
	"github.com/ordena/bitacora-api/internal/infrastructure/wiring"
	"github.com/ordena/bitacora-api/pkg/config"
	"github.com/ordena/bitacora-api/pkg/logger"
)

type options struct {
	file     string
	charset  string
	format   string
	outDir   string
	search   string
	bodega   string
	sucursal string
	query    dto.HistoryQueryRequest
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "exportar: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("exportar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.file, "archivo", "", "instantánea JSON de movimientos (vacío = fuente configurada)")
	fs.StringVar(&o.charset, "charset", "utf-8", "codificación del archivo: utf-8 | latin1")
	fs.StringVar(&o.format, "formato", "ambos", "xlsx | pdf | ambos")
	fs.StringVar(&o.outDir, "salida", ".", "directorio de salida")
	fs.StringVar(&o.search, "buscar", "", "texto en nombre o código de producto")
	fs.StringVar(&o.bodega, "bodega", "", "id de bodega")
	fs.StringVar(&o.sucursal, "sucursal", "", "id de sucursal")
	fs.StringVar(&o.query.TipoMovimiento, "tipo", "", "ENTRADA | SALIDA | AJUSTE")
	fs.StringVar(&o.query.FechaInicio, "desde", "", "fecha inicio (YYYY-MM-DD)")
	fs.StringVar(&o.query.FechaFin, "hasta", "", "fecha fin (YYYY-MM-DD, día completo)")
	fs.StringVar(&o.query.CantidadMin, "min", "", "cantidad mínima")
	fs.StringVar(&o.query.CantidadMax, "max", "", "cantidad máxima")
	fs.StringVar(&o.query.Dias, "dias", "", "solo movimientos de los últimos N días")
	fs.StringVar(&o.query.Limite, "limite", "", "máximo de productos, los de movimiento más reciente")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	switch o.format {
	case "xlsx", "pdf", "ambos":
	default:
		return o, fmt.Errorf("formato %q no soportado", o.format)
	}
	// la instantánea no trae bodega ni sucursal por movimiento: no hay cómo filtrar por alcance
	if o.file != "" && (o.bodega != "" || o.sucursal != "") {
		return o, errors.New("-bodega/-sucursal no aplican con -archivo")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: stderr})
	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}

	var source repository.MovementSource
	var thresholds repository.ThresholdRepository
	if o.file != "" {
		records, err := readSnapshot(o.file, o.charset, loc)
		if err != nil {
			return err
		}
		source = snapshotSource(records)
		log.Info().Str("archivo", o.file).Int("movimientos", len(records)).Msg("instantánea cargada")
	} else {
		sources, err := wiring.Open(ctx, cfg, log.Zerolog())
		if err != nil {
			return err
		}
		defer sources.Close()
		source, thresholds = sources.Movements, sources.Thresholds
	}

	defaults := wiring.DefaultThresholds(cfg.Report)
	uc := history.NewHistoryUseCase(source, thresholds,
		export.NewExcelEncoder(), infrapdf.NewMarotoReportEncoder(),
		history.Config{Location: loc, Thresholds: &defaults},
		log.Zerolog())

	filter, err := history.ParseFilter(o.query, loc)
	if err != nil {
		return err
	}
	limit, err := history.ParseProductLimit(o.query.Limite)
	if err != nil {
		return err
	}
	q := repository.MovementQuery{
		Scope:        repository.Scope{BodegaID: o.bodega, SucursalID: o.sucursal},
		Filter:       filter,
		ProductLimit: limit,
	}

	vm := history.NewHistoryViewModel(uc)
	defer vm.Reset()
	vm.SetSearch(ctx, o.search)
	if err := vm.Refresh(ctx, q); err != nil {
		return err
	}
	view := vm.View()
	if view.State == history.StateEmpty {
		fmt.Fprintln(stdout, "sin movimientos para los filtros indicados; se exporta un archivo vacío")
	}
	fmt.Fprintf(stdout, "%d productos, %d movimientos visibles\n", len(view.Products), len(view.Visible))

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("crear directorio de salida: %w", err)
	}

	label := scopeLabel(q.Scope)
	if o.format == "xlsx" || o.format == "ambos" {
		b, name, err := uc.EncodeSpreadsheet(ctx, view.Visible)
		if err != nil {
			return err
		}
		if err := write(stdout, o.outDir, name, b); err != nil {
			return err
		}
	}
	if o.format == "pdf" || o.format == "ambos" {
		b, name, err := uc.EncodeReport(ctx, view.Visible, label)
		if err != nil {
			return err
		}
		if err := write(stdout, o.outDir, name, b); err != nil {
			return err
		}
	}
	return nil
}

// snapshotSource fuente en memoria: el filtro se aplica después, al construir la vista.
type snapshotSource []entity.MovementRecord

func (s snapshotSource) FetchMovements(_ context.Context, _ repository.MovementQuery) ([]entity.MovementRecord, error) {
	return s, nil
}

func readSnapshot(path, charset string, loc *time.Location) ([]entity.MovementRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir instantánea: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("charset %q no soportado", charset)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer instantánea: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("instantánea vacía")
	}
	return remote.DecodeSnapshot(body, loc)
}

func scopeLabel(s repository.Scope) string {
	switch {
	case s.BodegaID != "":
		return "Bodega " + s.BodegaID
	case s.SucursalID != "":
		return "Sucursal " + s.SucursalID
	default:
		return "Instantánea local"
	}
}

func write(stdout io.Writer, dir, name string, b []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "escrito %s (%d bytes)\n", path, len(b))
	return nil
}
