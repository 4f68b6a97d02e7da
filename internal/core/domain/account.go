package domain

// Account is a ledger account created through the frontend API.
type Account struct {
	ID      string `json:"accountId"`
	Balance int64  `json:"balance,omitempty"`
}
