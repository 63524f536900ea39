package model

// DefaultStoreName is shown until store details are loaded
const DefaultStoreName = "Bookstore"

// StoreDetails are the store settings printed on receipts
type StoreDetails struct {
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Website       string `json:"website"`
	Address       string `json:"address"`
	Fax           string `json:"fax"`
	Email         string `json:"email"`
	TaxNumber     string `json:"tax_number"`
	ReceiptFooter string `json:"receipt_footer"`
	Logo          string `json:"logo,omitempty"`
}

// DefaultStoreDetails returns the settings used when the backend cannot be reached
func DefaultStoreDetails() StoreDetails {
	return StoreDetails{Name: DefaultStoreName}
}

// StoreName returns the configured name or the default
func (s StoreDetails) StoreName() string {
	if s.Name == "" {
		return DefaultStoreName
	}
	return s.Name
}
