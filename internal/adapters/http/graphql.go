package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the route-guide service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Int},
			"longitude": &graphql.Field{Type: graphql.Int},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: pointType},
		},
	})

	noteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteNote",
		Fields: graphql.Fields{
			"location": &graphql.Field{Type: pointType},
			"message":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"feature": &graphql.Field{
				Type:        featureType,
				Description: "The feature at an exact location; empty name when none exists",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.Point{
						Latitude:  int32(p.Args["latitude"].(int)),
						Longitude: int32(p.Args["longitude"].(int)),
					}
					return deps.RouteGuide.GetFeature(p.Context, &pt)
				},
			},
			"featuresWithin": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Named features inside a bounding rectangle (corners in any order)",
				Args: graphql.FieldConfigArgument{
					"loLatitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"loLongitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"hiLatitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"hiLongitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rect := domain.Rectangle{
						Lo: domain.Point{
							Latitude:  int32(p.Args["loLatitude"].(int)),
							Longitude: int32(p.Args["loLongitude"].(int)),
						},
						Hi: domain.Point{
							Latitude:  int32(p.Args["hiLatitude"].(int)),
							Longitude: int32(p.Args["hiLongitude"].(int)),
						},
					}.Normalized()

					features, err := deps.Features.List(p.Context)
					if err != nil {
						return nil, err
					}
					matches := make([]domain.Feature, 0)
					for _, f := range features {
						if f.Name != "" && rect.Contains(f.Location) {
							matches = append(matches, f)
						}
					}
					return matches, nil
				},
			},
			"notesAt": &graphql.Field{
				Type:        graphql.NewList(noteType),
				Description: "The chat log at a location, in stored order",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.Point{
						Latitude:  int32(p.Args["latitude"].(int)),
						Longitude: int32(p.Args["longitude"].(int)),
					}
					return deps.Notes.NotesAt(p.Context, pt)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// graphqlRequest is the standard GraphQL POST body.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// GraphQLHandler serves the read-only GraphQL query surface.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)

	return func(c *fiber.Ctx) error {
		if err != nil {
			return errInternal(c, "schema init: "+err.Error())
		}

		var req graphqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid GraphQL request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
