package polymarket

// mapping.go — frontera de validación de schema en la ingesta.
//
// La Data API devuelve números como strings y timestamps en tres formatos
// distintos. Todo se normaliza aquí: los records que no pasan Validate se
// descartan con un contador, nunca se procesan en silencio.

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// mapRawTrades convierte los trades crudos a domain.TradeRecord, validando
// cada uno. Devuelve los records válidos y el número de descartados.
func mapRawTrades(wallet string, raws []rawTrade) (records []domain.TradeRecord, dropped int) {
	records = make([]domain.TradeRecord, 0, len(raws))

	for _, rt := range raws {
		price, _ := rt.Price.Float64()
		size, _ := rt.Size.Float64()

		rec := domain.TradeRecord{
			EventID:     rt.ID,
			Wallet:      wallet,
			TokenID:     rt.Asset,
			ConditionID: rt.ConditionID,
			Outcome:     rt.Outcome,
			Direction:   domain.Direction(rt.Side),
			Price:       price,
			Size:        size,
			Timestamp:   parseTradeTimestamp(rt.Timestamp),
		}

		if err := rec.Validate(); err != nil {
			dropped++
			slog.Debug("mapping: dropped raw trade", "wallet", shortID(wallet), "err", err)
			continue
		}
		records = append(records, rec)
	}

	return records, dropped
}

func parseTradeTimestamp(n json.Number) time.Time {
	s := n.String()
	// Try as unix timestamp (seconds or milliseconds)
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return time.Unix(sec/1000, (sec%1000)*int64(time.Millisecond))
		}
		return time.Unix(sec, 0)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec)
	}
	// Try as ISO string
	for _, layout := range []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func shortID(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:10] + "..."
}
