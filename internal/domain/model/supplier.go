package model

type Supplier struct {
	ID           string   `json:"id"`
	User         User     `json:"user"`
	BusinessName string   `json:"businessName"`
	SupplierType string   `json:"supplierType"`
	Products     []string `json:"products,omitempty"`
	Address      Address  `json:"address"`
}

func (s Supplier) Key() string { return s.ID }
