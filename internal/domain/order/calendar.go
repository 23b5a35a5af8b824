package order

import "time"

// Calendar define la ventana semanal de compra y el día sin pedidos, en la zona horaria de la tienda.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday // primer día de la ventana (jueves)
	Blackout  time.Weekday // día en que no se admiten pedidos (miércoles)
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// WindowStart devuelve la medianoche local del WeekStart más reciente en o antes de now.
func (c Calendar) WindowStart(now time.Time) time.Time {
	local := now.In(c.loc())
	back := (int(local.Weekday()) - int(c.WeekStart) + 7) % 7
	y, m, d := local.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, c.loc())
}

// IsBlackout indica si now cae en el día sin pedidos (hora local de la tienda).
func (c Calendar) IsBlackout(now time.Time) bool {
	return now.In(c.loc()).Weekday() == c.Blackout
}

// Window devuelve el intervalo [inicio, now) de la ventana vigente.
func (c Calendar) Window(now time.Time) (start, end time.Time) {
	return c.WindowStart(now), now
}
