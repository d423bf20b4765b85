package models

// Position — открытая позиция с биржи, только для чтения.
type Position struct {
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"` // Buy/Sell
	Size       float64  `json:"size"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
}
