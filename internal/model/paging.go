package model

import "math"

// Sort — одна запись сортировки запроса. Порядок в списке задаёт приоритет.
type Sort struct {
	Field      string `json:"sort_field"`
	Ascending  bool   `json:"sort_ascending"`
	NullsFirst bool   `json:"nulls_first"`
}

// PagingRequest описывает страницу, сортировку и текстовый поиск.
// Размер и номер страницы — указатели: nil, ноль, отрицательное значение и
// NaN одинаково означают «пагинация выключена, вернуть всё».
type PagingRequest struct {
	PageSize     *float64 `json:"page_size"`
	PageIndex    *float64 `json:"page_index"`
	Sorts        []Sort   `json:"sorts"`
	SearchText   string   `json:"search_text"`
	SearchFields []string `json:"search_fields"`
}

// Enabled сообщает, включена ли пагинация.
func (p *PagingRequest) Enabled() bool {
	if p == nil {
		return false
	}
	return pageNumber(p.PageSize) > 0 && pageNumber(p.PageIndex) >= 0
}

func pageNumber(v *float64) float64 {
	if v == nil {
		return -1
	}
	if math.IsNaN(*v) {
		return -1
	}
	return *v
}

func (p *PagingRequest) limitOffset() (limit, offset uint64) {
	size := uint64(pageNumber(p.PageSize))
	index := uint64(pageNumber(p.PageIndex))
	return size, index * size
}

func (p *PagingRequest) sorts() []Sort {
	if p == nil {
		return nil
	}
	return p.Sorts
}

// PagedResult — страница результата. TotalCount/TotalPages равны нулю, когда
// пагинация была выключена и вернулся полный набор строк.
type PagedResult struct {
	Items      []Record `json:"items"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
}

func totalPages(count int, pageSize uint64) int {
	if pageSize == 0 || count <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(pageSize)))
}
