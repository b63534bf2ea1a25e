package stocks

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the provider returned no price history for a ticker.
var ErrNotFound = errors.New("no data found for ticker")

// Quote is one fetched market snapshot, consumed only to build the reply text.
type Quote struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        int64
	MarketCap     *float64
	PERatio       *float64
	AsOf          time.Time
}

// Provider fetches the latest quote for a ticker.
type Provider interface {
	Quote(ctx context.Context, ticker string) (*Quote, error)
}

// ComputeChange derives the absolute and percentage change from the previous
// close. A zero previous close yields a zero percentage instead of a
// division fault.
func ComputeChange(price, prevClose float64) (change, changePercent float64) {
	change = price - prevClose
	if prevClose != 0 {
		changePercent = change / prevClose * 100
	}
	return change, changePercent
}
