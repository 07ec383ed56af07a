package model

// Company is one legal entity with its own chart of accounts and fiscal years.
type Company struct {
	ID           string
	Name         string
	OrgNumber    string
	BaseCurrency string // ISO 4217, e.g. "SEK"
}
