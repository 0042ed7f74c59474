package types

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// NewPagination нормализует параметры страницы. Номер страницы зажимается
// в диапазон [1, totalPages]; для пустой выборки остаётся страница 1.
func NewPagination(page, pageSize, totalCount int) Pagination {
	if pageSize < 1 {
		pageSize = 20
	}

	totalPages := (totalCount + pageSize - 1) / pageSize

	maxPage := totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	return Pagination{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}

// Offset — смещение для SQL-запроса с LIMIT/OFFSET.
func (p Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}
