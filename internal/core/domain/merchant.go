package domain

// Merchant is the static payee profile consumed by the payload encoder.
// It is loaded from configuration and never mutated at runtime.
type Merchant struct {
	AccountID    string
	ProviderID   string
	Name         string
	City         string
	CategoryCode string
	CountryCode  string
	StoreLabel   string
	Phone        string
}
