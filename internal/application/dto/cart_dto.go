package dto

// AddCartItemRequest agrega unidades de un producto al carrito.
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest fija la cantidad de una línea existente.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
