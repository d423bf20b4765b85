package exchange

// Ответы Bybit v5, числа приходят строками.

type klineResult struct {
	Symbol   string     `json:"symbol"`
	Category string     `json:"category"`
	List     [][]string `json:"list"` // [startTime, open, high, low, close, volume, turnover], новые первыми
}

type walletBalanceResult struct {
	List []struct {
		AccountType string `json:"accountType"`
		Coin        []struct {
			Coin                string `json:"coin"`
			WalletBalance       string `json:"walletBalance"`
			Locked              string `json:"locked"`
			Equity              string `json:"equity"`
			AvailableToWithdraw string `json:"availableToWithdraw"`
		} `json:"coin"`
	} `json:"list"`
}

type positionListResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol        string `json:"symbol"`
		Side          string `json:"side"` // Buy / Sell / "" (пустая в one-way)
		Size          string `json:"size"`
		AvgPrice      string `json:"avgPrice"`
		PositionValue string `json:"positionValue"`
		UnrealisedPnl string `json:"unrealisedPnl"`
		Leverage      string `json:"leverage"`
	} `json:"list"`
}

type orderCreateResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}
