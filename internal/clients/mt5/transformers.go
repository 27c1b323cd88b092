package mt5

import (
	"time"

	"github.com/aristath/mt5-trader/internal/clients/mt5/sdk"
	"github.com/aristath/mt5-trader/internal/domain"
)

// unixUTC converts terminal seconds to a UTC time.
func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func transformSymbols(records []sdk.SymbolRecord) []domain.SymbolInfo {
	symbols := make([]domain.SymbolInfo, 0, len(records))
	for _, r := range records {
		symbols = append(symbols, domain.SymbolInfo{
			Name:        r.Name,
			Description: r.Description,
			Path:        r.Path,
			Visible:     r.Visible,
			Select:      r.Select,
			Digits:      r.Digits,
		})
	}
	return symbols
}

func transformRates(records []sdk.RateRecord) []domain.Candle {
	candles := make([]domain.Candle, 0, len(records))
	for _, r := range records {
		candles = append(candles, domain.Candle{
			Time:       unixUTC(r.Time),
			Open:       r.Open,
			High:       r.High,
			Low:        r.Low,
			Close:      r.Close,
			TickVolume: r.TickVolume,
			Spread:     r.Spread,
			RealVolume: r.RealVolume,
		})
	}
	return candles
}

func transformTicks(records []sdk.TickRecord) []domain.Tick {
	ticks := make([]domain.Tick, 0, len(records))
	for _, r := range records {
		tm := unixUTC(r.Time)
		if r.TimeMsc != 0 {
			tm = time.UnixMilli(r.TimeMsc).UTC()
		}
		ticks = append(ticks, domain.Tick{
			Time:       tm,
			Bid:        r.Bid,
			Ask:        r.Ask,
			Last:       r.Last,
			Volume:     r.Volume,
			TimeMsc:    r.TimeMsc,
			Flags:      r.Flags,
			VolumeReal: r.VolumeReal,
		})
	}
	return ticks
}

func transformOrders(records []sdk.OrderRecord) []domain.Order {
	orders := make([]domain.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, domain.Order{
			Ticket:         r.Ticket,
			TimeSetup:      unixUTC(r.TimeSetup),
			Type:           domain.OrderType(r.Type),
			Magic:          r.Magic,
			VolumeInitial:  r.VolumeInitial,
			VolumeCurrent:  r.VolumeCurrent,
			PriceOpen:      r.PriceOpen,
			StopLoss:       r.SL,
			TakeProfit:     r.TP,
			PriceCurrent:   r.PriceCurrent,
			PriceStopLimit: r.PriceStopLimit,
			Symbol:         r.Symbol,
			Comment:        r.Comment,
		})
	}
	return orders
}

func transformPositions(records []sdk.PositionRecord) []domain.Position {
	positions := make([]domain.Position, 0, len(records))
	for _, r := range records {
		positions = append(positions, domain.Position{
			Ticket:       r.Ticket,
			Time:         unixUTC(r.Time),
			Type:         domain.PositionType(r.Type),
			Magic:        r.Magic,
			Identifier:   r.Identifier,
			Volume:       r.Volume,
			PriceOpen:    r.PriceOpen,
			StopLoss:     r.SL,
			TakeProfit:   r.TP,
			PriceCurrent: r.PriceCurrent,
			Swap:         r.Swap,
			Profit:       r.Profit,
			Symbol:       r.Symbol,
			Comment:      r.Comment,
		})
	}
	return positions
}

// toWireRequest flattens a domain request for the bridge.
func toWireRequest(req domain.TradeRequest) sdk.TradeRequest {
	return sdk.TradeRequest{
		Action:      uint32(req.Action),
		Magic:       req.Magic,
		Order:       req.Order,
		Symbol:      req.Symbol,
		Volume:      req.Volume,
		Price:       req.Price,
		StopLimit:   req.StopLimit,
		SL:          req.SL,
		TP:          req.TP,
		Deviation:   req.Deviation,
		Type:        int32(req.Type),
		TypeFilling: int32(req.TypeFilling),
		TypeTime:    int32(req.TypeTime),
		Expiration:  req.Expiration,
		Comment:     req.Comment,
		Position:    req.Position,
		PositionBy:  req.PositionBy,
	}
}

func transformTradeResult(r *sdk.TradeResult) domain.TradeResult {
	return domain.TradeResult{
		Retcode:         r.Retcode,
		Deal:            r.Deal,
		Order:           r.Order,
		Volume:          r.Volume,
		Price:           r.Price,
		Bid:             r.Bid,
		Ask:             r.Ask,
		Comment:         r.Comment,
		RequestID:       r.RequestID,
		RetcodeExternal: r.RetcodeExternal,
	}
}
