package models

// Product represents a catalog entry as the storefront sees it
type Product struct {
	ID             string `json:"id"`
	ProductNumber  string `json:"productNumber"`
	Name           string `json:"name"`
	AvailableStock int    `json:"availableStock"`
	Available      bool   `json:"available"`
}
