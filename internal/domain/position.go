package domain

// epsilon por debajo del cual una cantidad de shares se considera cero.
const QtyEpsilon = 1e-4

// Position es el estado de un token dentro del portfolio virtual de un wallet.
// No se modela shorting: Quantity nunca baja de cero.
type Position struct {
	TokenID     string
	ConditionID string
	Outcome     string
	Quantity    float64 // shares en cartera, >= 0
	CostBasis   float64 // USDC invertido en las shares actuales
	AvgEntry    float64 // precio medio ponderado de entrada; 0 = indefinido
	RealizedPnL float64 // PnL acumulado de cierres parciales/totales
	LastMark    float64 // último precio observado en el stream de trades
}

// Open devuelve true si la posición tiene inventario.
func (p *Position) Open() bool {
	return p.Quantity > QtyEpsilon
}

// MarketValue devuelve el valor de la posición al último mark observado.
func (p *Position) MarketValue() float64 {
	if !p.Open() {
		return 0
	}
	return p.Quantity * p.LastMark
}

// Buy añade shares a la posición al precio de entrada dado (ya con slippage)
// y recalcula el precio medio ponderado.
func (p *Position) Buy(size, entryPrice float64) {
	cost := entryPrice * size
	p.Quantity += size
	p.CostBasis += cost
	p.AvgEntry = p.CostBasis / p.Quantity
}

// Sell cierra hasta size shares al precio dado (ya con slippage) y devuelve
// la cantidad efectivamente vendida y el PnL realizado del lote.
// Vender más de lo que hay se recorta al inventario — nunca un short.
// Si la posición queda en cero el precio medio vuelve a indefinido.
func (p *Position) Sell(size, exitPrice float64) (sold, pnl float64) {
	if !p.Open() {
		return 0, 0
	}
	sold = min(size, p.Quantity)
	pnl = (exitPrice - p.AvgEntry) * sold

	// Reducir cost basis proporcionalmente; el avg entry no cambia.
	p.CostBasis *= 1 - sold/p.Quantity
	p.Quantity -= sold
	p.RealizedPnL += pnl

	if !p.Open() {
		p.Quantity = 0
		p.CostBasis = 0
		p.AvgEntry = 0
	}
	return sold, pnl
}

// Portfolio es el mapa token → posición de un wallet durante un replay.
// Vive lo que dura la simulación; no se persiste.
type Portfolio map[string]*Position

// Get devuelve la posición del token, creándola si no existe.
func (pf Portfolio) Get(t TradeRecord) *Position {
	pos, ok := pf[t.TokenID]
	if !ok {
		pos = &Position{
			TokenID:     t.TokenID,
			ConditionID: t.ConditionID,
			Outcome:     t.Outcome,
		}
		pf[t.TokenID] = pos
	}
	return pos
}

// OpenValue devuelve el valor total de las posiciones abiertas al último mark.
func (pf Portfolio) OpenValue() float64 {
	var total float64
	for _, pos := range pf {
		total += pos.MarketValue()
	}
	return total
}
