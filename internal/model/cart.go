package model

import "time"

type CartLine struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Quantity int     `json:"quantity"`
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

type CartView struct {
	Lines []CartLine `json:"lines"`
	Count int        `json:"count"`
	Total float64    `json:"total"`
}

type Receipt struct {
	Lines        []CartLine `json:"lines"`
	Total        float64    `json:"total"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
}
