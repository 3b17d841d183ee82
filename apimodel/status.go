package apimodel

type Status struct {
	ActiveCount  int      `json:"active_count"`
	TopId        string   `json:"top_id"`
	Buzzer       bool     `json:"buzzer"`
	MenuPath     []int    `json:"menu_path"`
	Screensavers []string `json:"screensavers"`
}
