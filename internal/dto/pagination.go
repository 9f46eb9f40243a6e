package dto

// PaginationQuery carries the common list parameters. Search is a free-text
// filter whose interpretation is per-resource.
type PaginationQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// Normalize clamps page/limit to usable values.
func (q *PaginationQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
}

// Offset returns the row offset for the normalized page.
func (q PaginationQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PaginatedResponse is the envelope for every list endpoint.
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
