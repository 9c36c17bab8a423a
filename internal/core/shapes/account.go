package shapes

import "github.com/JonMunkholm/csvtables/internal/core"

func init() {
	core.RegisterShape(AccountShape)
}

// Account is one holding from a brokerage positions table:
//
//	Account Number,Investment Name,Symbol,Shares,Share Price,Total Value
type Account struct {
	AccountNumber  string  `json:"account_number"`
	InvestmentName string  `json:"investment_name"`
	Symbol         string  `json:"symbol"`
	Shares         float64 `json:"shares"`
	SharePrice     float64 `json:"share_price"`
	TotalValue     float64 `json:"total_value"`
}

// AccountShape binds Account fields to their CSV headers.
var AccountShape = core.Shape{
	Key:   "account",
	Label: "Accounts",
	Fields: []core.FieldSpec{
		{Name: "account_number", Aliases: []string{"Account Number"}, Type: core.FieldText, Required: true},
		{Name: "investment_name", Aliases: []string{"Investment Name"}, Type: core.FieldText, Required: true},
		{Name: "symbol", Aliases: []string{"Symbol"}, Type: core.FieldText, Required: true},
		{Name: "shares", Aliases: []string{"Shares"}, Type: core.FieldNumeric, Required: true},
		{Name: "share_price", Aliases: []string{"Share Price"}, Type: core.FieldNumeric, Required: true},
		{Name: "total_value", Aliases: []string{"Total Value"}, Type: core.FieldNumeric, Required: true},
	},
}

// AccountFromRecord builds an Account from a record of AccountShape.
func AccountFromRecord(r core.Record) Account {
	return Account{
		AccountNumber:  r.Text("account_number"),
		InvestmentName: r.Text("investment_name"),
		Symbol:         r.Text("symbol"),
		Shares:         r.Number("shares"),
		SharePrice:     r.Number("share_price"),
		TotalValue:     r.Number("total_value"),
	}
}

// Accounts projects t into Accounts.
func Accounts(t core.Table) ([]Account, error) {
	return core.ProjectAs(t, AccountShape, AccountFromRecord)
}
