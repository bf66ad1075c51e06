package domain

// Weather is the subset of the upstream weather report we serve.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
}
