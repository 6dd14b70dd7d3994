package models

// TransactionType determines the sign a ledger entry contributes to the
// balance. Amounts are always stored positive.
type TransactionType string

const (
	TransactionReceived TransactionType = "Received"
	TransactionPayment  TransactionType = "Payment"
	TransactionRefund   TransactionType = "Refund"
)

// Transaction is an immutable ledger entry owned by one student. Entries
// are never updated after creation and no delete is exposed.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	StudentID   string          `db:"student_id" json:"-"`
	Date        string          `db:"date" json:"date"`
	Description string          `db:"description" json:"description"`
	Amount      float64         `db:"amount" json:"amount"`
	Type        TransactionType `db:"type" json:"type"`
}

// Balance folds a transaction list into the running balance:
// received minus payments minus refunds. Order of entries is irrelevant.
func Balance(transactions []Transaction) float64 {
	var balance float64
	for _, tx := range transactions {
		switch tx.Type {
		case TransactionReceived:
			balance += tx.Amount
		case TransactionPayment, TransactionRefund:
			balance -= tx.Amount
		}
	}
	return balance
}
