package schema

// Attributes is the metadata block the REST API puts on every record.
type Attributes struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// AccountRecord is an Account as returned by a query.
type AccountRecord struct {
	Attributes         Attributes `json:"attributes"`
	ID                 string     `json:"Id"`
	Name               string     `json:"Name"`
	NumberOfEmployees  int        `json:"NumberOfEmployees"`
	ShippingState      string     `json:"ShippingState"`
	ShippingPostalCode string     `json:"ShippingPostalCode"`
	ShippingCity       string     `json:"ShippingCity"`
	ShippingStreet     string     `json:"ShippingStreet"`
}
