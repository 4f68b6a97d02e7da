package domain

// Ledger operation kinds.
const (
	LedgerIssue  = "issue"
	LedgerRetire = "retire"
)

// LedgerOperation moves Amount into (issue) or out of (retire) Account.
type LedgerOperation struct {
	ID      string `codec:"id"`
	Kind    string `codec:"kind"`
	Account string `codec:"account"`
	Amount  int64  `codec:"amount"`
}

// LedgerResult reports the outcome of one submitted operation.
type LedgerResult struct {
	OperationID string `codec:"operation_id"`
	OK          bool   `codec:"ok"`
	Error       string `codec:"error,omitempty"`
}
