package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/continue-watching/internal/layout"
)

func (s *Server) registerLayoutRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLayout",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/layout",
		Summary:     "Get layout",
		Description: "Returns the number of slides shown at a viewport width",
		Tags:        []string{"Layout"},
	}, s.handleGetLayout)
}

// LayoutResponse is the layout for one width.
type LayoutResponse struct {
	Width         float64 `json:"width" doc:"Requested viewport width"`
	SlidesPerView int     `json:"slidesPerView" doc:"Slides visible at once"`
}

// LayoutOutput wraps the layout for Huma.
type LayoutOutput struct {
	Body LayoutResponse
}

func (s *Server) handleGetLayout(_ context.Context, input *WidthInput) (*LayoutOutput, error) {
	return &LayoutOutput{Body: LayoutResponse{
		Width:         input.Width,
		SlidesPerView: layout.SlidesPerView(input.Width),
	}}, nil
}
