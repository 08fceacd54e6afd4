package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type CatalogView struct {
	Items      []Sweet  `json:"items"`
	Categories []string `json:"categories"`
	Search     string   `json:"search"`
	Category   string   `json:"category"`
	LoadError  string   `json:"load_error,omitempty"`
}
