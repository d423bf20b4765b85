package models

import "encoding/json"

const OrderTypeMarket = "Market"

type OrderRequest struct {
	Symbol string
	Side   Side
	Type   string
	Qty    string
}

// OrderResult — подтверждение биржи как есть, дальше не интерпретируем.
type OrderResult struct {
	OrderID     string          `json:"orderId"`
	OrderLinkID string          `json:"orderLinkId"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}
