package models

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Pagination 读数分页参数（limit/offset）
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Valid limit 在 1..MaxLimit，offset 非负
func (p Pagination) Valid() bool {
	return p.Limit >= 1 && p.Limit <= MaxLimit && p.Offset >= 0
}
