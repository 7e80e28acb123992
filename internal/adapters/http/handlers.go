package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// queryPoint parses latitude/longitude query params (fixed-point integers).
func queryPoint(c *fiber.Ctx) (domain.Point, bool) {
	lat := c.QueryInt("latitude", 1<<31)
	lon := c.QueryInt("longitude", 1<<31)
	if lat == 1<<31 || lon == 1<<31 {
		return domain.Point{}, false
	}
	return domain.Point{Latitude: int32(lat), Longitude: int32(lon)}, true
}

// GetFeatureHandler returns the feature at an exact location. A location with
// no feature yields a feature with an empty name, not a 404.
func GetFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := queryPoint(c)
		if !ok {
			return errBadRequest(c, "latitude and longitude are required")
		}

		f, err := deps.RouteGuide.GetFeature(c.UserContext(), &p)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(f)
	}
}

// FeaturesWithinHandler returns the named features inside a rectangle. The
// corners may arrive in any order.
func FeaturesWithinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loLat := c.QueryInt("lo_latitude", 1<<31)
		loLon := c.QueryInt("lo_longitude", 1<<31)
		hiLat := c.QueryInt("hi_latitude", 1<<31)
		hiLon := c.QueryInt("hi_longitude", 1<<31)
		if loLat == 1<<31 || loLon == 1<<31 || hiLat == 1<<31 || hiLon == 1<<31 {
			return errBadRequest(c, "lo_latitude, lo_longitude, hi_latitude and hi_longitude are required")
		}

		rect := domain.Rectangle{
			Lo: domain.Point{Latitude: int32(loLat), Longitude: int32(loLon)},
			Hi: domain.Point{Latitude: int32(hiLat), Longitude: int32(hiLon)},
		}.Normalized()

		features, err := deps.Features.List(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		matches := make([]domain.Feature, 0)
		for _, f := range features {
			if f.Name != "" && rect.Contains(f.Location) {
				matches = append(matches, f)
			}
		}
		return c.JSON(matches)
	}
}

// ListNotesHandler returns the chat log at a location in stored order.
func ListNotesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := queryPoint(c)
		if !ok {
			return errBadRequest(c, "latitude and longitude are required")
		}

		notes, err := deps.Notes.NotesAt(c.UserContext(), p)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if notes == nil {
			notes = []*domain.RouteNote{}
		}
		return c.JSON(notes)
	}
}
