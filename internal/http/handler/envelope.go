package handler

import "github.com/gofiber/fiber/v2"

// dataResponse is the success envelope.
type dataResponse struct {
	Data any `json:"data"`
}

// listResponse is the success envelope of paginated lists.
type listResponse struct {
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func newPagination(total, limit, offset int) pagination {
	return pagination{Total: total, Limit: limit, Offset: offset, HasMore: offset+limit < total}
}

func writeData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dataResponse{Data: data})
}

func writeList(c *fiber.Ctx, data any, p pagination) error {
	return c.Status(fiber.StatusOK).JSON(listResponse{Data: data, Pagination: p})
}
