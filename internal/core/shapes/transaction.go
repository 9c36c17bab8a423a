package shapes

import "github.com/JonMunkholm/csvtables/internal/core"

func init() {
	core.RegisterShape(TransactionShape)
}

// Transaction is one entry from a brokerage activity table. Dates are kept
// as exported text.
type Transaction struct {
	AccountNumber          string  `json:"account_number"`
	TradeDate              string  `json:"trade_date"`
	SettlementDate         string  `json:"settlement_date"`
	TransactionType        string  `json:"transaction_type"`
	TransactionDescription string  `json:"transaction_description"`
	InvestmentName         string  `json:"investment_name"`
	Symbol                 string  `json:"symbol"`
	Shares                 float64 `json:"shares"`
	SharePrice             float64 `json:"share_price"`
	PrincipalAmount        float64 `json:"principal_amount"`
	CommissionsAndFees     float64 `json:"commissions_and_fees"`
	NetAmount              float64 `json:"net_amount"`
	AccruedInterest        float64 `json:"accrued_interest"`
	AccountType            string  `json:"account_type"`
}

// TransactionShape binds Transaction fields to their CSV headers.
var TransactionShape = core.Shape{
	Key:   "transaction",
	Label: "Transactions",
	Fields: []core.FieldSpec{
		{Name: "account_number", Aliases: []string{"Account Number"}, Type: core.FieldText, Required: true},
		{Name: "trade_date", Aliases: []string{"Trade Date"}, Type: core.FieldText, Required: true},
		{Name: "settlement_date", Aliases: []string{"Settlement Date"}, Type: core.FieldText, Required: true},
		{Name: "transaction_type", Aliases: []string{"Transaction Type"}, Type: core.FieldText, Required: true},
		{Name: "transaction_description", Aliases: []string{"Transaction Description"}, Type: core.FieldText, Required: true},
		{Name: "investment_name", Aliases: []string{"Investment Name"}, Type: core.FieldText, Required: true},
		{Name: "symbol", Aliases: []string{"Symbol"}, Type: core.FieldText, Required: true},
		{Name: "shares", Aliases: []string{"Shares"}, Type: core.FieldNumeric, Required: true},
		{Name: "share_price", Aliases: []string{"Share Price"}, Type: core.FieldNumeric, Required: true},
		{Name: "principal_amount", Aliases: []string{"Principal Amount"}, Type: core.FieldNumeric, Required: true},
		{Name: "commissions_and_fees", Aliases: []string{"Commissions and Fees"}, Type: core.FieldNumeric, Required: true},
		{Name: "net_amount", Aliases: []string{"Net Amount"}, Type: core.FieldNumeric, Required: true},
		{Name: "accrued_interest", Aliases: []string{"Accrued Interest"}, Type: core.FieldNumeric, Required: true},
		{Name: "account_type", Aliases: []string{"Account Type"}, Type: core.FieldText, Required: true},
	},
}

// TransactionFromRecord builds a Transaction from a record of TransactionShape.
func TransactionFromRecord(r core.Record) Transaction {
	return Transaction{
		AccountNumber:          r.Text("account_number"),
		TradeDate:              r.Text("trade_date"),
		SettlementDate:         r.Text("settlement_date"),
		TransactionType:        r.Text("transaction_type"),
		TransactionDescription: r.Text("transaction_description"),
		InvestmentName:         r.Text("investment_name"),
		Symbol:                 r.Text("symbol"),
		Shares:                 r.Number("shares"),
		SharePrice:             r.Number("share_price"),
		PrincipalAmount:        r.Number("principal_amount"),
		CommissionsAndFees:     r.Number("commissions_and_fees"),
		NetAmount:              r.Number("net_amount"),
		AccruedInterest:        r.Number("accrued_interest"),
		AccountType:            r.Text("account_type"),
	}
}

// Transactions projects t into Transactions.
func Transactions(t core.Table) ([]Transaction, error) {
	return core.ProjectAs(t, TransactionShape, TransactionFromRecord)
}
