package domain

// Currency is one of the ISO currencies the KHQR payload format supports.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyKHR Currency = "KHR"
)

// NumericCode returns the ISO 4217 numeric code used in the payload.
func (c Currency) NumericCode() string {
	switch c {
	case CurrencyUSD:
		return "840"
	case CurrencyKHR:
		return "116"
	}
	return ""
}

// Exponent returns the number of minor-unit digits for amount formatting.
func (c Currency) Exponent() int {
	switch c {
	case CurrencyKHR:
		return 0
	default:
		return 2
	}
}

func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyKHR
}
