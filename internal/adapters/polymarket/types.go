package polymarket

import "encoding/json"

// rawTrade es un trade de la Data API antes de la frontera de validación.
type rawTrade struct {
	ID          string      `json:"transactionHash"`
	ProxyWallet string      `json:"proxyWallet"`
	Asset       string      `json:"asset"`
	ConditionID string      `json:"conditionId"`
	Outcome     string      `json:"outcome"`
	Side        string      `json:"side"`
	Price       json.Number `json:"price"`
	Size        json.Number `json:"size"`
	Timestamp   json.Number `json:"timestamp"`
}

// rawMarket es la respuesta de CLOB /markets/{conditionID}.
type rawMarket struct {
	ConditionID string     `json:"condition_id"`
	Closed      bool       `json:"closed"`
	Tokens      []rawToken `json:"tokens"`
}

type rawToken struct {
	TokenID string      `json:"token_id"`
	Outcome string      `json:"outcome"`
	Price   json.Number `json:"price"`
	Winner  bool        `json:"winner"`
}
