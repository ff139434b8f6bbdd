package domain

import "time"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInitiated  Status = "INITIATED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

// Outcome is the result a gateway callback reports for a payment.
type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeFailed    Outcome = "FAILED"
)

func (o Outcome) Valid() bool {
	return o == OutcomeCompleted || o == OutcomeFailed
}

type Method string

const (
	MethodCreditCard Method = "CREDIT_CARD"
	MethodDebitCard  Method = "DEBIT_CARD"
	MethodUPI        Method = "UPI"
	MethodNetBanking Method = "NET_BANKING"
	MethodWallet     Method = "WALLET"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodUPI, MethodNetBanking, MethodWallet:
		return true
	}
	return false
}

type CardSummary struct {
	Last4 string `bson:"last4" json:"last4"`
	Brand string `bson:"brand" json:"brand"`
}

// Payment settles exactly one order; a second initiation for the same order
// is rejected. It advances INITIATED → PROCESSING → COMPLETED/FAILED on the
// gateway callback and may later move to REFUNDED.
type Payment struct {
	ID              string       `bson:"_id" json:"id"`
	OrderID         string       `bson:"order_id" json:"orderId"`
	OwnerID         string       `bson:"owner_id" json:"userId"`
	Amount          float64      `bson:"amount" json:"amount"`
	Method          Method       `bson:"method" json:"paymentMethod"`
	Status          Status       `bson:"status" json:"status"`
	TransactionRef  string       `bson:"transaction_ref,omitempty" json:"transactionId,omitempty"`
	TransactionTime *time.Time   `bson:"transaction_time,omitempty" json:"transactionDate,omitempty"`
	Card            *CardSummary `bson:"card,omitempty" json:"cardDetails,omitempty"`
	ErrorDetail     string       `bson:"error_detail,omitempty" json:"errorMessage,omitempty"`
	CreatedAt       time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updatedAt"`
}
