package model

// PayType classifies how a posting quotes its salary.
type PayType string

const (
	PayNegotiable PayType = "negotiable"
	PayMonthly    PayType = "monthly"
	PayDaily      PayType = "daily"
	PayYear       PayType = "year"
)

// AllPayTypes returns the pay types in classification priority order.
func AllPayTypes() []PayType {
	return []PayType{PayNegotiable, PayMonthly, PayDaily, PayYear}
}

// Valid reports whether p is one of the known pay types.
func (p PayType) Valid() bool {
	switch p {
	case PayNegotiable, PayMonthly, PayDaily, PayYear:
		return true
	default:
		return false
	}
}
