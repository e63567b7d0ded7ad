package domain

import "time"

// RealizedKind distingue cómo se cerró un lote.
type RealizedKind string

const (
	RealizedSell       RealizedKind = "SELL"
	RealizedSettlement RealizedKind = "SETTLEMENT"
)

// RealizedTrade es un evento de PnL realizado: un cierre parcial por SELL
// o el settlement final de un mercado resuelto.
type RealizedTrade struct {
	TokenID    string
	Kind       RealizedKind
	Quantity   float64
	EntryPrice float64 // avg entry con slippage aplicado
	ExitPrice  float64
	PnL        float64 // (exit - entry) × quantity
	Return     float64 // (exit - entry) / entry — retorno sobre capital comprometido
	Timestamp  time.Time
}

// OpenMark es una posición abierta valorada a mark por el oracle.
type OpenMark struct {
	TokenID    string
	Quantity   float64
	EntryPrice float64
	MarkPrice  float64
	PnL        float64
}

// SimulationResult es la salida del replay de un wallet, antes de métricas.
type SimulationResult struct {
	Wallet          string
	TradesSimulated int // records aceptados y reproducidos
	DroppedRecords  int // records malformados descartados en ingesta

	InitialCapital float64
	Cash           float64 // delta de caja acumulado (compras -, ventas/settlements +)

	RealizedPnL   float64
	UnrealizedPnL float64

	Realized  []RealizedTrade
	OpenMarks []OpenMark
	Curve     EquityCurve

	// Posiciones abiertas que el oracle no pudo valorar tras agotar retries.
	// Excluidas de los totales, nunca asumidas a cero.
	PricelessPositions int

	LastEventAt time.Time
}

// Returns devuelve la serie de retornos por trade realizado.
func (r *SimulationResult) Returns() []float64 {
	out := make([]float64, 0, len(r.Realized))
	for _, rt := range r.Realized {
		out = append(out, rt.Return)
	}
	return out
}

// CapitalCommitted aproxima el capital total comprometido: coste de entrada
// de los lotes realizados más el cost basis de las posiciones marcadas.
func (r *SimulationResult) CapitalCommitted() float64 {
	var total float64
	for _, rt := range r.Realized {
		total += rt.EntryPrice * rt.Quantity
	}
	for _, om := range r.OpenMarks {
		total += om.EntryPrice * om.Quantity
	}
	return total
}

// Quote es la valoración actual de un token según el price oracle.
type Quote struct {
	Price    float64
	Resolved bool // el mercado ya resolvió
	Winner   bool // este token es el ganador (solo con Resolved)
}

// SettlementValue devuelve el valor por share: 1/0 si resolvió, mark si no.
func (q Quote) SettlementValue() float64 {
	if !q.Resolved {
		return q.Price
	}
	if q.Winner {
		return 1.0
	}
	return 0.0
}

// RiskMetrics son las métricas derivadas de un wallet, calculadas una vez.
// Los punteros nil significan "indefinido" (muestra insuficiente, stdev 0,
// sin observaciones a la baja) — nunca se inventa un número.
type RiskMetrics struct {
	Sharpe      *float64
	Sortino     *float64
	MaxDrawdown float64
	WinRate     float64

	TStat      *float64
	DF         int
	PValue     *float64
	SampleSize int
	Sufficient bool

	KellyFraction float64
}

// WalletReport es el record final por wallet, la salida del batch.
type WalletReport struct {
	RunID  string
	Wallet string

	TradesSimulated    int
	DroppedRecords     int
	RealizedPnL        float64
	UnrealizedPnL      float64
	TotalPnL           float64
	ROIPercent         float64
	PricelessPositions int

	Metrics RiskMetrics

	HighDrawdownRisk         bool
	StatisticallySignificant bool

	Error string // fallo aislado del wallet; el batch continúa

	GeneratedAt time.Time
}

// Valid devuelve true si el wallet produjo datos utilizables.
func (w WalletReport) Valid() bool {
	return w.Error == "" && w.TradesSimulated > 0
}
