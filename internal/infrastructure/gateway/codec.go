package gateway

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"payment-broker.backend/internal/domain/entities"
)

// SecurityKeyField carries the terminal secret on every gateway call
const SecurityKeyField = "security_key"

const merchantFieldPrefix = "merchant_defined_field_"

var (
	ErrMalformedResponse = errors.New("gateway: malformed response")
	ErrGatewayRejected   = errors.New("gateway: request rejected")
)

// formField maps one DTO field to its wire name
type formField struct {
	name      string
	value     func() string
	sensitive bool
}

func str(s string) func() string { return func() string { return s } }

func amount(d decimal.Decimal) func() string {
	return func() string {
		if d.IsZero() {
			return ""
		}
		return d.StringFixed(2)
	}
}

func flag(b bool) func() string {
	return func() string { return strconv.FormatBool(b) }
}

func transactionFields(r *entities.TransactionRequest) []formField {
	fields := []formField{
		{name: "type", value: str(string(r.Type))},
		{name: "amount", value: amount(r.Amount)},
		{name: "currency", value: str(r.Currency)},
		{name: "ccnumber", value: str(r.CCNumber)},
		{name: "ccexp", value: str(r.CCExp), sensitive: true},
		{name: "cvv", value: str(r.CVV), sensitive: true},
		{name: "transactionid", value: str(r.TransactionID)},
		{name: "orderid", value: str(r.OrderID)},
		{name: "order_description", value: str(r.OrderDescription)},
		{name: "first_name", value: str(r.FirstName)},
		{name: "last_name", value: str(r.LastName)},
		{name: "company", value: str(r.Company)},
		{name: "address1", value: str(r.Address1)},
		{name: "city", value: str(r.City)},
		{name: "state", value: str(r.State)},
		{name: "zip", value: str(r.Zip)},
		{name: "country", value: str(r.Country)},
		{name: "phone", value: str(r.Phone)},
		{name: "email", value: str(r.Email)},
		{name: "ipaddress", value: str(r.IPAddress)},
		{name: "test_mode", value: flag(r.TestMode)},
		{name: "customer_receipt", value: flag(r.CustomerReceipt)},
	}
	for i, v := range r.MerchantDefinedFields {
		if v == "" {
			continue
		}
		fields = append(fields, formField{name: merchantFieldPrefix + strconv.Itoa(i+1), value: str(v)})
	}
	return fields
}

func queryFields(q *entities.QueryRequest) []formField {
	return []formField{
		{name: "transaction_id", value: str(q.TransactionID)},
		{name: "order_id", value: str(q.OrderID)},
		{name: "condition", value: str(q.Condition)},
		{name: "action_type", value: str(q.ActionType)},
		{name: "start_date", value: str(q.StartDate)},
		{name: "end_date", value: str(q.EndDate)},
	}
}

// EncodeForm renders fields, skipping empty values. Sensitive fields are only
// written when includeSensitive is set.
func EncodeForm(fields []formField, includeSensitive bool) url.Values {
	values := url.Values{}
	for _, f := range fields {
		if f.sensitive && !includeSensitive {
			continue
		}
		if v := f.value(); v != "" {
			values.Set(f.name, v)
		}
	}
	return values
}

// AuditForm is the form body safe to persist: the request is sanitized first
// and sensitive fields are left out.
func AuditForm(req *entities.TransactionRequest) string {
	clean := req.SanitizeForLogging()
	return EncodeForm(transactionFields(&clean), false).Encode()
}

var transactionResponseSetters = map[string]func(*entities.TransactionResponse, string){
	"response":      func(r *entities.TransactionResponse, v string) { r.Response = v },
	"responsetext":  func(r *entities.TransactionResponse, v string) { r.ResponseText = v },
	"authcode":      func(r *entities.TransactionResponse, v string) { r.AuthCode = v },
	"transactionid": func(r *entities.TransactionResponse, v string) { r.TransactionID = v },
	"avsresponse":   func(r *entities.TransactionResponse, v string) { r.AVSResponse = v },
	"cvvresponse":   func(r *entities.TransactionResponse, v string) { r.CVVResponse = v },
	"orderid":       func(r *entities.TransactionResponse, v string) { r.OrderID = v },
	"type":          func(r *entities.TransactionResponse, v string) { r.Type = v },
	"response_code": func(r *entities.TransactionResponse, v string) { r.ResponseCode = v },
}

// ParseTransactionResponse reads a key=value&... reply. Keys are matched
// case-insensitively and unknown keys are ignored.
func ParseTransactionResponse(body string) (*entities.TransactionResponse, error) {
	resp := &entities.TransactionResponse{}
	seen := false

	for _, pair := range strings.Split(strings.TrimSpace(body), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}

		set, ok := transactionResponseSetters[key]
		if !ok {
			continue
		}
		set(resp, value)
		if key == "response" {
			seen = true
		}
	}

	if !seen {
		return nil, fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}
	return resp, nil
}

// ParseQueryResponse decodes the XML query reply
func ParseQueryResponse(body []byte) (*entities.QueryResponse, error) {
	var resp entities.QueryResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if msg := strings.TrimSpace(resp.ErrorResponse); msg != "" {
		return &resp, fmt.Errorf("%w: %s", ErrGatewayRejected, msg)
	}
	return &resp, nil
}
