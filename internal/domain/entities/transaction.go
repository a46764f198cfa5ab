package entities

import (
	"encoding/xml"
	"strings"

	"github.com/shopspring/decimal"
	domainerrors "payment-broker.backend/internal/domain/errors"
)

// TransactionType is the gateway operation requested
type TransactionType string

const (
	TransactionTypeSale    TransactionType = "sale"
	TransactionTypeAuth    TransactionType = "auth"
	TransactionTypeCapture TransactionType = "capture"
	TransactionTypeVoid    TransactionType = "void"
	TransactionTypeRefund  TransactionType = "refund"
	TransactionTypeQuery   TransactionType = "query"
)

// RedactedPlaceholder replaces sensitive values in audit copies
const RedactedPlaceholder = "[REDACTED]"

// Gateway response codes for the "response" field
const (
	GatewayResponseApproved = "1"
	GatewayResponseDeclined = "2"
	GatewayResponseError    = "3"
)

// TransactionRequest is a fire-and-collect gateway call
type TransactionRequest struct {
	Type                  TransactionType `json:"type" binding:"required,oneof=sale auth capture void refund"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	CCNumber              string          `json:"ccNumber"`
	CCExp                 string          `json:"ccExp"`
	CVV                   string          `json:"cvv"`
	TransactionID         string          `json:"transactionId"`
	OrderID               string          `json:"orderId"`
	OrderDescription      string          `json:"orderDescription"`
	FirstName             string          `json:"firstName"`
	LastName              string          `json:"lastName"`
	Company               string          `json:"company"`
	Address1              string          `json:"address1"`
	City                  string          `json:"city"`
	State                 string          `json:"state"`
	Zip                   string          `json:"zip"`
	Country               string          `json:"country"`
	Phone                 string          `json:"phone"`
	Email                 string          `json:"email"`
	IPAddress             string          `json:"ipAddress"`
	TestMode              bool            `json:"testMode"`
	CustomerReceipt       bool            `json:"customerReceipt"`
	MerchantDefinedFields []string        `json:"merchantDefinedFields"`
}

// Validate checks the fields each transaction type needs
func (r *TransactionRequest) Validate() error {
	fields := map[string]string{}
	positiveAmount := r.Amount.GreaterThan(decimal.Zero)

	switch r.Type {
	case TransactionTypeSale, TransactionTypeAuth:
		if !positiveAmount {
			fields["amount"] = "amount must be greater than zero"
		}
		if onlyDigits(r.CCNumber) == "" {
			fields["ccNumber"] = "card number is required"
		}
		if strings.TrimSpace(r.CCExp) == "" {
			fields["ccExp"] = "card expiry is required"
		}
	case TransactionTypeCapture, TransactionTypeRefund:
		if strings.TrimSpace(r.TransactionID) == "" {
			fields["transactionId"] = "transaction id is required"
		}
		if r.Amount.IsNegative() {
			fields["amount"] = "amount cannot be negative"
		}
	case TransactionTypeVoid:
		if strings.TrimSpace(r.TransactionID) == "" {
			fields["transactionId"] = "transaction id is required"
		}
	default:
		fields["type"] = "unsupported transaction type"
	}

	if len(fields) > 0 {
		return domainerrors.Validation("invalid transaction request", fields)
	}
	return nil
}

// SanitizeForLogging returns a copy safe to persist: the PAN keeps its first
// six and last four digits, CVV and expiry are redacted.
func (r TransactionRequest) SanitizeForLogging() TransactionRequest {
	out := r
	out.CCNumber = MaskPAN(r.CCNumber)
	if r.CVV != "" {
		out.CVV = RedactedPlaceholder
	}
	if r.CCExp != "" {
		out.CCExp = RedactedPlaceholder
	}
	if r.MerchantDefinedFields != nil {
		out.MerchantDefinedFields = append([]string(nil), r.MerchantDefinedFields...)
	}
	return out
}

// MaskPAN keeps the first 6 and last 4 digits of a card number
func MaskPAN(pan string) string {
	digits := onlyDigits(pan)
	switch {
	case digits == "":
		return ""
	case len(digits) <= 10:
		if len(digits) <= 4 {
			return strings.Repeat("*", len(digits))
		}
		return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
	default:
		return digits[:6] + strings.Repeat("*", len(digits)-10) + digits[len(digits)-4:]
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TransactionResponse is the typed gateway reply
type TransactionResponse struct {
	Response      string `json:"response"`
	ResponseText  string `json:"responseText"`
	AuthCode      string `json:"authCode"`
	TransactionID string `json:"transactionId"`
	AVSResponse   string `json:"avsResponse"`
	CVVResponse   string `json:"cvvResponse"`
	OrderID       string `json:"orderId"`
	Type          string `json:"type"`
	ResponseCode  string `json:"responseCode"`
}

// Approved reports whether the gateway approved the transaction
func (r *TransactionResponse) Approved() bool {
	return r.Response == GatewayResponseApproved
}

// QueryRequest looks up transactions at the gateway
type QueryRequest struct {
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
	Condition     string `json:"condition"`
	ActionType    string `json:"actionType"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

// Validate requires at least one filter
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.TransactionID) == "" && strings.TrimSpace(q.OrderID) == "" &&
		strings.TrimSpace(q.StartDate) == "" {
		return domainerrors.Validation("invalid query request", map[string]string{
			"transactionId": "transaction id, order id or start date is required",
		})
	}
	return nil
}

// QueryResponse is the XML reply of the gateway query endpoint
type QueryResponse struct {
	XMLName       xml.Name           `xml:"nm_response" json:"-"`
	Transactions  []QueryTransaction `xml:"transaction" json:"transactions"`
	ErrorResponse string             `xml:"error_response" json:"errorResponse,omitempty"`
}

// QueryTransaction is one transaction in a query reply
type QueryTransaction struct {
	TransactionID   string        `xml:"transaction_id" json:"transactionId"`
	TransactionType string        `xml:"transaction_type" json:"transactionType"`
	Condition       string        `xml:"condition" json:"condition"`
	OrderID         string        `xml:"order_id" json:"orderId"`
	AuthCode        string        `xml:"authorization_code" json:"authCode"`
	FirstName       string        `xml:"first_name" json:"firstName"`
	LastName        string        `xml:"last_name" json:"lastName"`
	Email           string        `xml:"email" json:"email"`
	CCNumber        string        `xml:"cc_number" json:"ccNumber"`
	Currency        string        `xml:"currency" json:"currency"`
	Actions         []QueryAction `xml:"action" json:"actions"`
}

// QueryAction is one action applied to a transaction
type QueryAction struct {
	Amount       string `xml:"amount" json:"amount"`
	ActionType   string `xml:"action_type" json:"actionType"`
	Date         string `xml:"date" json:"date"`
	Success      string `xml:"success" json:"success"`
	IPAddress    string `xml:"ip_address" json:"ipAddress"`
	Source       string `xml:"source" json:"source"`
	Username     string `xml:"username" json:"username"`
	ResponseText string `xml:"response_text" json:"responseText"`
	ResponseCode string `xml:"response_code" json:"responseCode"`
}
