package models

import "time"

// TransactionDateLayout is the ISO-8601 layout used for transaction dates.
const TransactionDateLayout = "2006-01-02T15:04:05.000Z"

// Transaction is one ledger entry. The ledger is append-only except for admin deletes.
type Transaction struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      int64  `json:"amount"`
	Description string `json:"description" validate:"max=500"`
}

// Time parses the transaction date, returning the zero time if it is malformed.
func (t Transaction) Time() time.Time {
	for _, layout := range []string{TransactionDateLayout, time.RFC3339Nano, "2006-01-02"} {
		if ts, err := time.Parse(layout, t.Date); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// HistoryEntry is a ledger transaction as seen in the shared history feed.
// TotalAmount counts the amount once per referencing active pilot.
type HistoryEntry struct {
	Transaction
	PilotIDs          []string `json:"pilotIds"`
	PilotCount        int      `json:"pilotCount"`
	TotalAmount       int64    `json:"totalAmount"`
	CumulativeBalance int64    `json:"cumulativeBalance"`
}

// MannaView is the ledger payload returned to clients.
type MannaView struct {
	Transactions []HistoryEntry `json:"transactions"`
	TotalBalance int64          `json:"totalBalance"`
}
