package sdk

// RPC arguments. These travel through the msgpack-rpc codec and are matched
// by field name on the bridge side.

// Empty is the argument of calls that take no parameters.
type Empty struct{}

// InitializeArgs are the arguments of Terminal.Initialize.
type InitializeArgs struct {
	Login    int64
	Password string
	Server   string
	Path     string
}

// LoginArgs are the arguments of Terminal.Login.
type LoginArgs struct {
	Login    int64
	Password string
	Server   string
}

// SymbolSelectArgs are the arguments of Terminal.SymbolSelect.
type SymbolSelectArgs struct {
	Symbol string
	Enable bool
}

// CopyRatesArgs are the arguments of Terminal.CopyRatesFromPos.
type CopyRatesArgs struct {
	Symbol    string
	Timeframe int32
	Start     int
	Count     int
}

// CopyTicksArgs are the arguments of Terminal.CopyTicksRange.
// From and To are unix seconds in UTC.
type CopyTicksArgs struct {
	Symbol string
	From   int64
	To     int64
	Flags  int32
}

// TradeRequest is the argument of Terminal.OrderSend.
type TradeRequest struct {
	Action      uint32
	Magic       uint64
	Order       uint64
	Symbol      string
	Volume      float64
	Price       float64
	StopLimit   float64
	SL          float64
	TP          float64
	Deviation   uint64
	Type        int32
	TypeFilling int32
	TypeTime    int32
	Expiration  int64
	Comment     string
	Position    uint64
	PositionBy  uint64
}

// Payload records. The bridge replies with a msgpack document holding one of
// these (or a slice of them); nil stands for "no result".

// LastError is the payload of Terminal.LastError.
type LastError struct {
	Code    int    `msgpack:"code"`
	Message string `msgpack:"message"`
}

// SymbolRecord is one entry of Terminal.SymbolsGet.
type SymbolRecord struct {
	Name        string `msgpack:"name"`
	Description string `msgpack:"description"`
	Path        string `msgpack:"path"`
	Visible     bool   `msgpack:"visible"`
	Select      bool   `msgpack:"select"`
	Digits      int    `msgpack:"digits"`
}

// RateRecord is one bar of Terminal.CopyRatesFromPos.
type RateRecord struct {
	Time       int64   `msgpack:"time"`
	Open       float64 `msgpack:"open"`
	High       float64 `msgpack:"high"`
	Low        float64 `msgpack:"low"`
	Close      float64 `msgpack:"close"`
	TickVolume uint64  `msgpack:"tick_volume"`
	Spread     int32   `msgpack:"spread"`
	RealVolume uint64  `msgpack:"real_volume"`
}

// TickRecord is one tick of Terminal.CopyTicksRange.
type TickRecord struct {
	Time       int64   `msgpack:"time"`
	Bid        float64 `msgpack:"bid"`
	Ask        float64 `msgpack:"ask"`
	Last       float64 `msgpack:"last"`
	Volume     uint64  `msgpack:"volume"`
	TimeMsc    int64   `msgpack:"time_msc"`
	Flags      uint32  `msgpack:"flags"`
	VolumeReal float64 `msgpack:"volume_real"`
}

// TradeResult is the payload of Terminal.OrderSend.
type TradeResult struct {
	Retcode         uint32  `msgpack:"retcode"`
	Deal            uint64  `msgpack:"deal"`
	Order           uint64  `msgpack:"order"`
	Volume          float64 `msgpack:"volume"`
	Price           float64 `msgpack:"price"`
	Bid             float64 `msgpack:"bid"`
	Ask             float64 `msgpack:"ask"`
	Comment         string  `msgpack:"comment"`
	RequestID       uint32  `msgpack:"request_id"`
	RetcodeExternal int32   `msgpack:"retcode_external"`
}

// OrderRecord is one entry of Terminal.OrdersGet. Ticket is the first field,
// matching the terminal's tuple layout.
type OrderRecord struct {
	Ticket         uint64  `msgpack:"ticket"`
	TimeSetup      int64   `msgpack:"time_setup"`
	Type           int32   `msgpack:"type"`
	Magic          uint64  `msgpack:"magic"`
	VolumeInitial  float64 `msgpack:"volume_initial"`
	VolumeCurrent  float64 `msgpack:"volume_current"`
	PriceOpen      float64 `msgpack:"price_open"`
	SL             float64 `msgpack:"sl"`
	TP             float64 `msgpack:"tp"`
	PriceCurrent   float64 `msgpack:"price_current"`
	PriceStopLimit float64 `msgpack:"price_stoplimit"`
	Symbol         string  `msgpack:"symbol"`
	Comment        string  `msgpack:"comment"`
}

// PositionRecord is one entry of Terminal.PositionsGet.
type PositionRecord struct {
	Ticket       uint64  `msgpack:"ticket"`
	Time         int64   `msgpack:"time"`
	Type         int32   `msgpack:"type"`
	Magic        uint64  `msgpack:"magic"`
	Identifier   uint64  `msgpack:"identifier"`
	Volume       float64 `msgpack:"volume"`
	PriceOpen    float64 `msgpack:"price_open"`
	SL           float64 `msgpack:"sl"`
	TP           float64 `msgpack:"tp"`
	PriceCurrent float64 `msgpack:"price_current"`
	Swap         float64 `msgpack:"swap"`
	Profit       float64 `msgpack:"profit"`
	Symbol       string  `msgpack:"symbol"`
	Comment      string  `msgpack:"comment"`
}
