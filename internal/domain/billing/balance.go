// Package billing calcula el saldo de un cliente y el monto adeudado por boleta.
//
// Los pagos no se asocian a boletas: se imputan contra la deuda total. El saldo
// se deriva de las boletas impagas (pendiente/parcial) y de los pagos aprobados
// que aún no han sido consolidados en un corte. Todo el cálculo usa decimal exacto.
package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// Corte punto de consolidación: pagos registrados hasta At ya fueron imputados;
// Credito es lo que quedó abonado a boletas que siguen impagas.
type Corte struct {
	At      time.Time
	Credito decimal.Decimal
}

// Input datos del cliente necesarios para el cálculo.
type Input struct {
	Boletas []*entity.Boleta
	Pagos   []*entity.Pago
	Corte   *Corte // nil si el cliente nunca ha sido consolidado
}

// BoletaOwed monto pendiente de una boleta.
type BoletaOwed struct {
	AmountOwed      decimal.Decimal
	IsPartiallyPaid bool
}

// Result saldo del cliente.
type Result struct {
	CurrentBalance decimal.Decimal
	GrossDebt      decimal.Decimal
	Credit         decimal.Decimal // abono disponible antes de imputar
	NextDueDate    *time.Time
	Owed           map[string]BoletaOwed

	unpaid       []*entity.Boleta // orden de imputación (más antigua primero)
	consumedUpTo *time.Time       // CreatedAt del último pago contado
}

// EstadoCuenta AL_DIA si no hay saldo, MOROSO en otro caso.
func (r Result) EstadoCuenta() string {
	if r.CurrentBalance.IsPositive() {
		return entity.EstadoCuentaMoroso
	}
	return entity.EstadoCuentaAlDia
}

// AmountOwed monto adeudado de la boleta (0 si no figura).
func (r Result) AmountOwed(boletaID string) decimal.Decimal {
	if o, ok := r.Owed[boletaID]; ok {
		return o.AmountOwed
	}
	return decimal.Zero
}

// Compute calcula saldo, próximo vencimiento y monto adeudado por boleta.
// Es una función pura: mismas entradas, mismo resultado.
func Compute(in Input) Result {
	res := Result{
		CurrentBalance: decimal.Zero,
		GrossDebt:      decimal.Zero,
		Credit:         decimal.Zero,
		Owed:           make(map[string]BoletaOwed, len(in.Boletas)),
	}

	for _, b := range in.Boletas {
		if !b.Impaga() {
			res.Owed[b.ID] = BoletaOwed{AmountOwed: decimal.Zero}
			continue
		}
		res.unpaid = append(res.unpaid, b)
		res.GrossDebt = res.GrossDebt.Add(b.MontoBoleta())
	}
	sort.SliceStable(res.unpaid, func(i, j int) bool {
		a, b := res.unpaid[i], res.unpaid[j]
		if !a.FechaEmision.Equal(b.FechaEmision) {
			return a.FechaEmision.Before(b.FechaEmision)
		}
		return a.ID < b.ID
	})

	res.Credit, res.consumedUpTo = availableCredit(in, res.unpaid)

	remaining := res.Credit
	for _, b := range res.unpaid {
		amount := b.MontoBoleta()
		applied := decimal.Min(remaining, amount)
		if applied.IsNegative() {
			applied = decimal.Zero
		}
		remaining = remaining.Sub(applied)
		owed := amount.Sub(applied)
		res.Owed[b.ID] = BoletaOwed{
			AmountOwed:      owed,
			IsPartiallyPaid: applied.IsPositive() && owed.IsPositive(),
		}
		if owed.IsPositive() {
			res.CurrentBalance = res.CurrentBalance.Add(owed)
			due := b.FechaVencimiento
			if res.NextDueDate == nil || due.Before(*res.NextDueDate) {
				res.NextDueDate = &due
			}
		}
	}
	return res
}

// availableCredit suma los pagos aprobados imputables a la deuda impaga.
// Con corte: crédito del corte más pagos registrados después. Sin corte: pagos
// desde la emisión de la boleta impaga más antigua, recorridos del más reciente
// al más antiguo.
func availableCredit(in Input, unpaid []*entity.Boleta) (decimal.Decimal, *time.Time) {
	pagos := make([]*entity.Pago, 0, len(in.Pagos))
	for _, p := range in.Pagos {
		if p.Estado == entity.PagoAprobado {
			pagos = append(pagos, p)
		}
	}
	sort.SliceStable(pagos, func(i, j int) bool {
		if !pagos[i].FechaPago.Equal(pagos[j].FechaPago) {
			return pagos[i].FechaPago.After(pagos[j].FechaPago)
		}
		return pagos[i].ID > pagos[j].ID
	})

	credit := decimal.Zero
	var last *time.Time
	track := func(p *entity.Pago) {
		credit = credit.Add(p.Monto)
		if last == nil || p.CreatedAt.After(*last) {
			t := p.CreatedAt
			last = &t
		}
	}

	if in.Corte != nil {
		credit = in.Corte.Credito
		for _, p := range pagos {
			if p.CreatedAt.After(in.Corte.At) {
				track(p)
			}
		}
		return credit, last
	}

	if len(unpaid) == 0 {
		return decimal.Zero, nil
	}
	desde := unpaid[0].FechaEmision
	for _, p := range pagos {
		if p.FechaPago.Before(desde) {
			break
		}
		track(p)
	}
	return credit, last
}

// Settlement nuevos estados tras imputar los pagos.
type Settlement struct {
	Estados      map[string]string // boleta → estado, solo las que cambian
	Corte        Corte
	EstadoCuenta string
	Saldo        decimal.Decimal
}

// Settle consolida el resultado: marca pagadas/parciales las boletas cubiertas
// y devuelve el nuevo corte. Volver a calcular con el corte resultante produce
// los mismos montos adeudados.
func Settle(in Input, now time.Time) Settlement {
	res := Compute(in)
	out := Settlement{
		Estados:      make(map[string]string),
		EstadoCuenta: res.EstadoCuenta(),
		Saldo:        res.CurrentBalance,
	}

	leftover := res.Credit
	for _, b := range res.unpaid {
		owed := res.Owed[b.ID]
		var estado string
		switch {
		case owed.AmountOwed.IsZero():
			estado = entity.BoletaPagada
			leftover = leftover.Sub(b.MontoBoleta())
		case owed.IsPartiallyPaid:
			estado = entity.BoletaParcial
		default:
			estado = entity.BoletaPendiente
		}
		if estado != b.Estado {
			out.Estados[b.ID] = estado
		}
	}

	at := now
	if in.Corte != nil {
		at = in.Corte.At
	}
	if res.consumedUpTo != nil && res.consumedUpTo.After(at) {
		at = *res.consumedUpTo
	}
	out.Corte = Corte{At: at, Credito: leftover}
	return out
}

// Reverse descuenta del corte un pago ya consolidado (anulación). Si el crédito
// queda negativo se reabren boletas pagadas, de la más reciente a la más antigua,
// hasta cubrir la diferencia. Devuelve las boletas a reabrir y el corte ajustado;
// luego debe llamarse Settle con las boletas reabiertas como pendientes.
func Reverse(corte Corte, monto decimal.Decimal, boletas []*entity.Boleta) ([]string, Corte) {
	credito := corte.Credito.Sub(monto)
	if !credito.IsNegative() {
		return nil, Corte{At: corte.At, Credito: credito}
	}

	pagadas := make([]*entity.Boleta, 0, len(boletas))
	for _, b := range boletas {
		if b.Estado == entity.BoletaPagada {
			pagadas = append(pagadas, b)
		}
	}
	sort.SliceStable(pagadas, func(i, j int) bool {
		if !pagadas[i].FechaEmision.Equal(pagadas[j].FechaEmision) {
			return pagadas[i].FechaEmision.After(pagadas[j].FechaEmision)
		}
		return pagadas[i].ID > pagadas[j].ID
	})

	var reabrir []string
	for _, b := range pagadas {
		if !credito.IsNegative() {
			break
		}
		reabrir = append(reabrir, b.ID)
		credito = credito.Add(b.MontoBoleta())
	}
	if credito.IsNegative() {
		credito = decimal.Zero
	}
	return reabrir, Corte{At: corte.At, Credito: credito}
}
