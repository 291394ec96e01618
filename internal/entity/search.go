package entity

// SearchPayload is the last applied global search, persisted so widgets can
// restore it after a reload. Advisory only: nothing in the core consumes it
// beyond storing and handing it back.
type SearchPayload struct {
	FilterField string `json:"filterField"` // all | lead | mobile | comment | country
	Query       string `json:"query"`
	Ts          int64  `json:"ts"`
}

var searchFields = map[string]bool{
	"all":     true,
	"lead":    true,
	"mobile":  true,
	"comment": true,
	"country": true,
}

func ValidSearchField(field string) bool {
	return searchFields[field]
}
