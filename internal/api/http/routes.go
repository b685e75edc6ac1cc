package httpapi

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-api/internal/climate"
	"github.com/i474232898/climate-api/internal/scheduler"
)

var validate = validator.New()

// RouteOptions tweaks the wire format.
type RouteOptions struct {
	// LegacyStartOrder renders [avg, min, max] on /api/v1.0/:start.
	LegacyStartOrder bool
}

// HealthSource reports the last store liveness probe.
type HealthSource interface {
	Health() scheduler.Health
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *climate.Service, health HealthSource, opts RouteOptions) {
	report := service.Report()

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(homepage(report, opts))
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		h := health.Health()
		code := fiber.StatusOK
		status := "ok"
		if !h.OK {
			code = fiber.StatusServiceUnavailable
			status = "degraded"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":  status,
			"service": "climate-api",
			"store":   h,
		})
	})

	v1 := app.Group("/api/v1.0")

	v1.Get("/precipitation", func(c *fiber.Ctx) error {
		return c.JSON(report.Precipitation)
	})

	v1.Get("/stations", func(c *fiber.Ctx) error {
		return c.JSON(report.Activity.Flatten())
	})

	v1.Get("/tobs", func(c *fiber.Ctx) error {
		return c.JSON(report.Temperatures)
	})

	v1.Get("/:start", func(c *fiber.Ctx) error {
		var q rangeQuery
		r, err := q.bind(c)
		if err != nil {
			return err
		}

		stats, err := service.RangeStats(c.UserContext(), r)
		if err != nil {
			return err
		}

		if opts.LegacyStartOrder {
			return c.JSON([][]*float64{{stats.Avg, stats.Min, stats.Max}})
		}
		return c.JSON([][]*float64{statsTriple(stats)})
	})

	v1.Get("/:start/:end", func(c *fiber.Ctx) error {
		var q rangeQuery
		r, err := q.bind(c)
		if err != nil {
			return err
		}

		stats, err := service.RangeStats(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON([][]*float64{statsTriple(stats)})
	})
}

// statsTriple is the canonical [min, avg, max] order.
func statsTriple(s climate.TemperatureStats) []*float64 {
	return []*float64{s.Min, s.Avg, s.Max}
}

// rangeQuery holds the path parameters of the range statistics routes.
type rangeQuery struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

func (q *rangeQuery) bind(c *fiber.Ctx) (climate.DateRange, error) {
	q.Start = c.Params("start")
	q.End = c.Params("end")

	if err := validate.Struct(q); err != nil {
		return climate.DateRange{}, q.malformed()
	}

	// The validator already enforces the layout; ParseDateRange only converts.
	r, err := climate.ParseDateRange(q.Start, q.End)
	if err != nil {
		return climate.DateRange{}, q.malformed()
	}
	return r, nil
}

func (q *rangeQuery) malformed() error {
	return fiber.NewError(fiber.StatusBadRequest,
		fmt.Sprintf("%v: start=%q end=%q", climate.ErrMalformedDate, q.Start, q.End))
}

func homepage(r *climate.Report, opts RouteOptions) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("<br/>")
	}

	line("Available Routes:")
	line(fmt.Sprintf("(Note: Available date is from %s to %s.)",
		climate.FormatDate(r.FirstDate), climate.FormatDate(r.LatestDate)))
	line("")
	line("/api/v1.0/precipitation")
	line("- Return dates and precipitation from the last year.")
	line("")
	line("/api/v1.0/stations")
	line("- Returns a json list of stations and their observation counts, most active first.")
	line("")
	line("/api/v1.0/tobs")
	line("- Returns list of Temperature Observations(tobs) from the last year for the most active station.")
	line("")
	line("/api/v1.0/yyyy-mm-dd")
	if opts.LegacyStartOrder {
		line("- Returns average, minimum and maximum temperature for all dates greater than and equal to the start date.")
	} else {
		line("- Returns minimum, average and maximum temperature for all dates greater than and equal to the start date.")
	}
	line("")
	line("/api/v1.0/yyyy-mm-dd/yyyy-mm-dd")
	line("- Returns minimum, average and maximum temperature for dates between the start and end date inclusive.")
	return b.String()
}
