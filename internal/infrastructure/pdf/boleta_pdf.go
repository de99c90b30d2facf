// Package pdf genera la representación impresa de la boleta de agua potable.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  Empresa + RUT               │  BOLETA  N° cliente, periodo │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: nombre, RUT, dirección                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE: consumo y cargos del mes                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: mes / saldo anterior / total / monto adeudado     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  QR al portal + vencimiento                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/pkg/rut"
)

var _ ports.BoletaPDFRenderer = (*BoletaRenderer)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 155}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// Empresa datos del emisor impresos en la cabecera.
type Empresa struct {
	Nombre    string
	RUT       string
	Direccion string
	Telefono  string
	PortalURL string // destino del QR; vacío = sin QR
}

// BoletaRenderer implementa ports.BoletaPDFRenderer con Maroto v2.
type BoletaRenderer struct {
	empresa Empresa
}

// NewBoletaRenderer construye el generador.
func NewBoletaRenderer(empresa Empresa) *BoletaRenderer {
	return &BoletaRenderer{empresa: empresa}
}

// RenderBoleta genera el PDF y devuelve sus bytes.
func (g *BoletaRenderer) RenderBoleta(ctx context.Context, data ports.BoletaPDF) ([]byte, error) {
	if data.Boleta == nil || data.Cliente == nil {
		return nil, fmt.Errorf("pdf: boleta y cliente son obligatorios")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Boleta "+data.Boleta.Periodo, true).
		WithAuthor(g.empresa.Nombre, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clienteRow(data.Cliente, data.Direccion))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(detalleRows(data.Boleta)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalesRow(data))
	m.AddRows(line.NewRow(4))
	m.AddRows(g.pieRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ──

func (g *BoletaRenderer) headerRow(data ports.BoletaPDF) core.Row {
	b := data.Boleta
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.empresa.Nombre, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("RUT: "+g.empresa.RUT, props.Text{Size: 8, Top: 8, Color: colorGray}),
			text.New(fmt.Sprintf("%s   |   Tel: %s", nonEmpty(g.empresa.Direccion, "-"), nonEmpty(g.empresa.Telefono, "-")),
				props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("BOLETA DE SERVICIO", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("Periodo "+nombrePeriodo(b.Periodo), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7}),
			text.New("N° cliente: "+data.Cliente.NumeroCliente, props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func clienteRow(c *entity.Cliente, d *entity.Direccion) core.Row {
	direccion := "-"
	if d != nil {
		direccion = strings.Join(nonEmptyAll(d.Direccion, d.Poblacion, d.Comuna), ", ")
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(c.NombreCompleto(), props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(fmt.Sprintf("RUT: %s   |   Dirección: %s", rut.Format(c.RUT), direccion),
				props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func detalleRows(b *entity.Boleta) []core.Row {
	item := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(8).Add(text.New(label, props.Text{Size: 9, Top: 1, Left: 2})),
			col.New(4).Add(text.New(value, props.Text{Size: 9, Align: align.Right, Top: 1, Right: 2})),
		)
	}
	return []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("DETALLE DEL CONSUMO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		item("Consumo del periodo", b.ConsumoM3.StringFixed(1)+" m³"),
		item("Cargo fijo", money(b.CargoFijo)),
		item("Agua potable", money(b.CargoAgua)),
		item("Alcantarillado", money(b.CargoAlcantarillado)),
		item("Tratamiento de aguas servidas", money(b.CargoTratamiento)),
	}
}

func totalesRow(data ports.BoletaPDF) core.Row {
	b := data.Boleta
	mes := b.MontoBoleta()
	anterior := b.MontoTotal.Sub(mes)
	if anterior.IsNegative() {
		anterior = decimal.Zero
	}

	label := func(s string, c *props.Color) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Color: c})
	}
	value := func(d decimal.Decimal, c *props.Color) core.Component {
		return text.New(money(d), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Color: c})
	}
	adeudadoColor := colorPrimary
	if data.MontoAdeudado.IsPositive() {
		adeudadoColor = colorAlert
	}

	return row.New(30).Add(
		col.New(4),
		col.New(5).Add(
			label("Total del mes:", nil),
			label("Saldo anterior:", nil),
			label("Total boleta:", colorPrimary),
			label("Monto adeudado:", adeudadoColor),
			label("Saldo de la cuenta:", colorGray),
		),
		col.New(3).Add(
			value(mes, nil),
			value(anterior, nil),
			value(b.MontoTotal, colorPrimary),
			value(data.MontoAdeudado, adeudadoColor),
			value(data.SaldoCliente, colorGray),
		),
	)
}

func (g *BoletaRenderer) pieRow(data ports.BoletaPDF) core.Row {
	b := data.Boleta
	leyenda := fmt.Sprintf("Emitida el %s. Vence el %s. Pague en línea o revise su historial en el portal de clientes.",
		b.FechaEmision.Format("02/01/2006"), b.FechaVencimiento.Format("02/01/2006"))
	if g.empresa.PortalURL == "" {
		return row.New(14).Add(col.New(12).Add(
			text.New(leyenda, props.Text{Size: 8, Color: colorGray, Top: 2}),
		))
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(g.empresa.PortalURL+"/boletas/"+b.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New(leyenda, props.Text{Size: 8, Color: colorGray, Top: 6, Left: 3})),
	)
}

// ── helpers ──

var meses = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// nombrePeriodo "2024-03" → "Marzo 2024". Un periodo mal formado se devuelve tal cual.
func nombrePeriodo(periodo string) string {
	var anio, mes int
	if _, err := fmt.Sscanf(periodo, "%4d-%2d", &anio, &mes); err != nil || mes < 1 || mes > 12 {
		return periodo
	}
	return fmt.Sprintf("%s %d", meses[mes-1], anio)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nonEmptyAll(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// money formato chileno sin decimales: 25000 → "$25.000".
func money(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	return sign + "$" + thousands(s)
}

// thousands inserta puntos de miles en un string numérico sin decimales.
func thousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
