package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const MaxLimit = 100

type Pagination struct {
	Skip  int
	Limit int
	Total int64
}

// ParseFromRequest reads skip/limit query parameters, clamping them to sane values.
func ParseFromRequest(c *fiber.Ctx, defaultLimit int) Pagination {
	skip, err := strconv.Atoi(c.Query("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Skip: skip, Limit: limit}
}
