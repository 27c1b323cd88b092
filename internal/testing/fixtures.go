package testing

import (
	"time"

	"github.com/aristath/mt5-trader/internal/clients/mt5/sdk"
)

// fixtureTime is the setup time used by every fixture.
var fixtureTime = time.Date(2023, 5, 17, 9, 30, 0, 0, time.UTC)

// NewOrderFixtures returns two open pending orders.
func NewOrderFixtures() []sdk.OrderRecord {
	return []sdk.OrderRecord{
		{
			Ticket:        50001,
			TimeSetup:     fixtureTime.Unix(),
			Type:          4, // BUY_STOP
			VolumeInitial: 1.0,
			VolumeCurrent: 1.0,
			PriceOpen:     150.123,
			SL:            149.0,
			TP:            151.0,
			PriceCurrent:  149.870,
			Symbol:        "USDJPY",
			Comment:       "test",
		},
		{
			Ticket:        50002,
			TimeSetup:     fixtureTime.Add(time.Minute).Unix(),
			Type:          3, // SELL_LIMIT
			VolumeInitial: 0.5,
			VolumeCurrent: 0.5,
			PriceOpen:     1.095,
			SL:            1.1,
			TP:            1.08,
			PriceCurrent:  1.0876,
			Symbol:        "EURUSD",
		},
	}
}

// NewPositionFixtures returns two open positions.
func NewPositionFixtures() []sdk.PositionRecord {
	return []sdk.PositionRecord{
		{
			Ticket:       70001,
			Time:         fixtureTime.Unix(),
			Type:         0,
			Identifier:   70001,
			Volume:       1.0,
			PriceOpen:    1.0861,
			SL:           1.08,
			TP:           1.095,
			PriceCurrent: 1.0876,
			Swap:         -0.42,
			Profit:       150.0,
			Symbol:       "EURUSD",
		},
		{
			Ticket:       70002,
			Time:         fixtureTime.Add(time.Hour).Unix(),
			Type:         1,
			Identifier:   70002,
			Volume:       0.3,
			PriceOpen:    150.5,
			PriceCurrent: 149.87,
			Profit:       126.1,
			Symbol:       "USDJPY",
			Comment:      "hedge",
		},
	}
}

// NewRateFixtures returns count consecutive H4 bars starting at fixtureTime.
func NewRateFixtures(count int) []sdk.RateRecord {
	rates := make([]sdk.RateRecord, 0, count)
	for i := 0; i < count; i++ {
		open := 1.08 + float64(i)*0.001
		rates = append(rates, sdk.RateRecord{
			Time:       fixtureTime.Add(time.Duration(i) * 4 * time.Hour).Unix(),
			Open:       open,
			High:       open + 0.002,
			Low:        open - 0.001,
			Close:      open + 0.001,
			TickVolume: uint64(1000 + i),
			Spread:     1,
		})
	}
	return rates
}
