package domain

// Trade server return codes.
const (
	RetcodeRequote           uint32 = 10004
	RetcodeReject            uint32 = 10006
	RetcodeCancel            uint32 = 10007
	RetcodePlaced            uint32 = 10008
	RetcodeDone              uint32 = 10009
	RetcodeDonePartial       uint32 = 10010
	RetcodeError             uint32 = 10011
	RetcodeTimeout           uint32 = 10012
	RetcodeInvalid           uint32 = 10013
	RetcodeInvalidVolume     uint32 = 10014
	RetcodeInvalidPrice      uint32 = 10015
	RetcodeInvalidStops      uint32 = 10016
	RetcodeTradeDisabled     uint32 = 10017
	RetcodeMarketClosed      uint32 = 10018
	RetcodeNoMoney           uint32 = 10019
	RetcodePriceChanged      uint32 = 10020
	RetcodePriceOff          uint32 = 10021
	RetcodeInvalidExpiration uint32 = 10022
	RetcodeOrderChanged      uint32 = 10023
	RetcodeTooManyRequests   uint32 = 10024
	RetcodeNoChanges         uint32 = 10025
	RetcodeServerDisablesAT  uint32 = 10026
	RetcodeClientDisablesAT  uint32 = 10027
	RetcodeLocked            uint32 = 10028
	RetcodeFrozen            uint32 = 10029
	RetcodeInvalidFill       uint32 = 10030
	RetcodeConnection        uint32 = 10031
	RetcodeOnlyReal          uint32 = 10032
	RetcodeLimitOrders       uint32 = 10033
	RetcodeLimitVolume       uint32 = 10034
	RetcodeInvalidOrder      uint32 = 10035
	RetcodePositionClosed    uint32 = 10036
)

var retcodeDescriptions = map[uint32]string{
	RetcodeRequote:           "requote",
	RetcodeReject:            "request rejected",
	RetcodeCancel:            "request canceled by trader",
	RetcodePlaced:            "order placed",
	RetcodeDone:              "request completed",
	RetcodeDonePartial:       "only part of the request was completed",
	RetcodeError:             "request processing error",
	RetcodeTimeout:           "request canceled by timeout",
	RetcodeInvalid:           "invalid request",
	RetcodeInvalidVolume:     "invalid volume in the request",
	RetcodeInvalidPrice:      "invalid price in the request",
	RetcodeInvalidStops:      "invalid stops in the request",
	RetcodeTradeDisabled:     "trade is disabled",
	RetcodeMarketClosed:      "market is closed",
	RetcodeNoMoney:           "not enough money",
	RetcodePriceChanged:      "prices changed",
	RetcodePriceOff:          "no quotes to process the request",
	RetcodeInvalidExpiration: "invalid order expiration date",
	RetcodeOrderChanged:      "order state changed",
	RetcodeTooManyRequests:   "too frequent requests",
	RetcodeNoChanges:         "no changes in request",
	RetcodeServerDisablesAT:  "autotrading disabled by server",
	RetcodeClientDisablesAT:  "autotrading disabled by client terminal",
	RetcodeLocked:            "request locked for processing",
	RetcodeFrozen:            "order or position frozen",
	RetcodeInvalidFill:       "invalid order filling type",
	RetcodeConnection:        "no connection with the trade server",
	RetcodeOnlyReal:          "operation allowed only for live accounts",
	RetcodeLimitOrders:       "pending orders limit reached",
	RetcodeLimitVolume:       "volume limit for the symbol reached",
	RetcodeInvalidOrder:      "incorrect or prohibited order type",
	RetcodePositionClosed:    "position already closed",
}

// RetcodeDescription returns a short human readable meaning of a return code.
func RetcodeDescription(code uint32) string {
	if d, ok := retcodeDescriptions[code]; ok {
		return d
	}
	return "unknown return code"
}
