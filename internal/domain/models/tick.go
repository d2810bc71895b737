package models

// PriceTick is one market observation from the realtime stream: last price
// and rolling 24h quote volume for a tracked symbol. Timestamp is unix
// seconds.
type PriceTick struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"`
	Price     float64 `json:"c"`
	Volume    float64 `json:"v"`
}
