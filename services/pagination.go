package services

const (
	PublicPerPage = 9
	OwnerPerPage  = 10

	// MaxPage bounds requested page numbers so offsets stay far from overflow.
	MaxPage = 1 << 20
)

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func newPage[T any](items []T, total int64, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return Page[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

func normalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

func offset(page, perPage int) int {
	return (page - 1) * perPage
}
