package utils

import "strconv"

const MaxPageSize = 100

// Page is a normalised 1-based page request.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage reads page and limit query values. Missing or invalid values fall back
// to page 1 and defaultLimit; limit is capped at MaxPageSize.
func ParsePage(pageValue, limitValue string, defaultLimit int) Page {
	page, err := strconv.Atoi(pageValue)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitValue)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return Page{Number: page, Limit: limit}
}

func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
