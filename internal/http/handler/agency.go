package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"staffingapi/internal/service"
)

type searchAgenciesQuery struct {
	Search string   `query:"search" validate:"max=200"`
	States []string `query:"states" validate:"max=60,dive,len=2,alpha"`
	Trades []string `query:"trades" validate:"max=50"`
}

// SearchAgencies godoc
// @Summary Search the agency directory
// @Tags agencies
// @Produce json
// @Param search query string false "name or description"
// @Param trades query string false "comma separated trade slugs"
// @Param states query string false "comma separated state codes"
// @Param claimed query bool false "only claimed or unclaimed agencies"
// @Param limit query int false "page size (1-100)" default(20)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} listResponse
// @Failure 400 {object} errorPayload
// @Router /api/agencies [get]
func SearchAgencies(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := fieldErrors{}
		page := parsePage(c, defaultPageLimit, errs)
		claimed := queryBool(c, "claimed", errs)
		q := searchAgenciesQuery{
			Search: strings.TrimSpace(c.Query("search")),
			States: upper(queryList(c, "states")),
			Trades: queryList(c, "trades"),
		}
		for k, v := range validateStruct(q) {
			errs[k] = v
		}
		if len(errs) > 0 {
			return writeValidation(c, errs)
		}

		res, err := svc.Search(c.UserContext(), service.AgencySearchInput{
			Search:  q.Search,
			Trades:  q.Trades,
			States:  q.States,
			Claimed: claimed,
			Limit:   page.Limit,
			Offset:  page.Offset,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeList(c, res.Items, newPagination(res.Total, page.Limit, page.Offset))
	}
}

// GetAgency godoc
// @Summary Get an agency profile with trades, regions and active compliance
// @Tags agencies
// @Produce json
// @Param slug path string true "agency slug"
// @Success 200 {object} dataResponse
// @Failure 404 {object} errorPayload
// @Router /api/agencies/{slug} [get]
func GetAgency(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		agency, err := svc.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, agency)
	}
}

// ListTrades godoc
// @Summary List construction trades
// @Tags agencies
// @Produce json
// @Success 200 {object} dataResponse
// @Router /api/trades [get]
func ListTrades(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trades, err := svc.Trades(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, trades)
	}
}

// ListRegions godoc
// @Summary List service regions
// @Tags agencies
// @Produce json
// @Success 200 {object} dataResponse
// @Router /api/regions [get]
func ListRegions(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		regions, err := svc.Regions(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeData(c, fiber.StatusOK, regions)
	}
}

func upper(in []string) []string {
	for i := range in {
		in[i] = strings.ToUpper(in[i])
	}
	return in
}
