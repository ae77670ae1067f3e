package pagination

import (
	"strconv"

	"walletd/internal/models"

	"github.com/gofiber/fiber/v2"
)

type Params struct {
	Page   int
	Limit  int
	Offset int
}

func New(page, limit int) Params {
	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ParseFromRequest reads page and limit from the query string. Missing values
// come back as 0 so the caller can apply its own defaults.
func ParseFromRequest(c *fiber.Ctx) (page, limit int, err error) {
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			return 0, 0, err
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return 0, 0, err
		}
	}
	return page, limit, nil
}

// Meta describes where this page sits in a result set of total items.
func (p Params) Meta(total int64) models.PageMeta {
	pageCount := int(total / int64(p.Limit))
	if total%int64(p.Limit) > 0 {
		pageCount++
	}
	return models.PageMeta{
		Page:            p.Page,
		Limit:           p.Limit,
		ItemCount:       total,
		PageCount:       pageCount,
		HasPreviousPage: p.Page > 1,
		HasNextPage:     p.Page < pageCount,
	}
}
