package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type PurchaseRequest struct {
	ID int64 `json:"id"`
}

// DraftForm carries the admin form exactly as typed; numeric fields are still text.
type DraftForm struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	ImageURL string `json:"imageUrl"`
}
