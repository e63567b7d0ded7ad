package domain

import (
	"errors"
	"fmt"
	"time"
)

// Direction es el lado de un trade: BUY o SELL.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ErrMalformedRecord marca un trade que no pasa la validación de ingesta.
// Los records malformados se descartan; el wallet continúa.
var ErrMalformedRecord = errors.New("malformed trade record")

// TradeRecord es un trade histórico de un wallet objetivo, ya normalizado.
// Inmutable: lo produce el loader y el simulador solo lo lee.
type TradeRecord struct {
	EventID     string
	Wallet      string
	TokenID     string
	ConditionID string
	Outcome     string // "Yes" | "No"
	Direction   Direction
	Price       float64 // en [0,1]
	Size        float64 // shares, > 0
	Timestamp   time.Time
}

// Validate comprueba que el record esté dentro de dominio.
// Price fuera de (0,1] o size <= 0 → ErrMalformedRecord.
func (t TradeRecord) Validate() error {
	if t.TokenID == "" {
		return fmt.Errorf("%w: empty token id", ErrMalformedRecord)
	}
	if t.Direction != DirectionBuy && t.Direction != DirectionSell {
		return fmt.Errorf("%w: direction %q", ErrMalformedRecord, t.Direction)
	}
	if t.Price <= 0 || t.Price > 1 {
		return fmt.Errorf("%w: price %.4f outside (0,1]", ErrMalformedRecord, t.Price)
	}
	if t.Size <= 0 {
		return fmt.Errorf("%w: size %.4f", ErrMalformedRecord, t.Size)
	}
	return nil
}
