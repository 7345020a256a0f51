package models

// Slide is one card of the contexts carousel.
type Slide struct {
	Key      string `json:"key"`
	Image    string `json:"image"`
	Title    string `json:"title"`
	Caption  string `json:"caption"`
	Scenario string `json:"scenario,omitempty"`
}
