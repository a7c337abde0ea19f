package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/continue-watching/internal/carousel"
	"github.com/listenupapp/continue-watching/internal/domain"
	"github.com/listenupapp/continue-watching/internal/layout"
)

func (s *Server) registerContinueWatchingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContinueWatching",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/continue-watching",
		Summary:     "List continue watching",
		Description: "Returns one resume entry per watched title, most recently visited first",
		Tags:        []string{"Continue Watching"},
	}, s.handleListContinueWatching)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCarouselFrame",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/continue-watching/carousel",
		Summary:     "Get carousel frame",
		Description: "Returns the carousel frame for a viewport width",
		Tags:        []string{"Continue Watching"},
	}, s.handleGetCarouselFrame)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshContinueWatching",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/continue-watching/refresh",
		Summary:     "Refresh open carousels",
		Description: "Re-reads the records and pushes a new frame to every open carousel",
		Tags:        []string{"Continue Watching"},
	}, s.handleRefreshContinueWatching)
}

// ResumeEntryResponse is one continue-watching entry.
type ResumeEntryResponse struct {
	TitleID            string  `json:"title_id" doc:"Title identifier"`
	EpisodeID          string  `json:"episode_id" doc:"Episode to resume"`
	EpisodeNumber      float64 `json:"episode_number" doc:"Episode number"`
	EpisodeTitle       string  `json:"episode_title,omitempty" doc:"Episode title, when known"`
	Image              string  `json:"image" doc:"Cover image URL"`
	AnimeTitle         string  `json:"anime_title" doc:"Resolved title, may be empty"`
	DisplayTitle       string  `json:"display_title" doc:"Title shown on the card"`
	PlaybackPercentage float64 `json:"playback_percentage" doc:"Stored playback progress"`
	VisualPercentage   float64 `json:"visual_percentage" doc:"Progress bar width, never below 5"`
	Href               string  `json:"href" doc:"Watch page link"`
}

// ContinueWatchingResponse lists resume entries in display order.
type ContinueWatchingResponse struct {
	Entries []ResumeEntryResponse `json:"entries" doc:"Entries, most recently visited first"`
	Count   int                   `json:"count" doc:"Number of entries"`
}

// ContinueWatchingOutput wraps the list for Huma.
type ContinueWatchingOutput struct {
	Body ContinueWatchingResponse
}

// WidthInput carries the viewport width query parameter.
type WidthInput struct {
	Width float64 `query:"width" required:"true" minimum:"0" maximum:"100000" doc:"Viewport width in CSS pixels"`
}

// CarouselFrameOutput wraps a frame for Huma.
type CarouselFrameOutput struct {
	Body carousel.Frame
}

// RefreshResponse reports how many open carousels were re-rendered.
type RefreshResponse struct {
	Refreshed int `json:"refreshed" doc:"Carousels that rendered a new frame"`
	Open      int `json:"open" doc:"Carousels currently open"`
}

// RefreshOutput wraps the refresh result for Huma.
type RefreshOutput struct {
	Body RefreshResponse
}

func (s *Server) handleListContinueWatching(ctx context.Context, _ *struct{}) (*ContinueWatchingOutput, error) {
	entries := s.services.ContinueWatching.ContinueWatching(ctx)

	resp := ContinueWatchingResponse{
		Entries: make([]ResumeEntryResponse, 0, len(entries)),
		Count:   len(entries),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, s.toResumeEntryResponse(e))
	}
	return &ContinueWatchingOutput{Body: resp}, nil
}

func (s *Server) handleGetCarouselFrame(ctx context.Context, input *WidthInput) (*CarouselFrameOutput, error) {
	entries := s.services.ContinueWatching.ContinueWatching(ctx)
	frame := carousel.BuildFrame(entries, layout.SlidesPerView(input.Width), s.opts.Navigator, s.opts.Carousel.AutoplayDelay)
	return &CarouselFrameOutput{Body: frame}, nil
}

func (s *Server) handleRefreshContinueWatching(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	refreshed := s.registry.RefreshAll(ctx)
	return &RefreshOutput{Body: RefreshResponse{Refreshed: refreshed, Open: s.registry.Len()}}, nil
}

func (s *Server) toResumeEntryResponse(e domain.ResumeEntry) ResumeEntryResponse {
	return ResumeEntryResponse{
		TitleID:            e.TitleID,
		EpisodeID:          e.Episode.ID,
		EpisodeNumber:      e.Episode.Number,
		EpisodeTitle:       e.Episode.Title,
		Image:              e.Episode.Image,
		AnimeTitle:         e.AnimeTitle,
		DisplayTitle:       e.DisplayTitle,
		PlaybackPercentage: e.PlaybackPercentage,
		VisualPercentage:   e.VisualPercentage(),
		Href:               s.opts.Navigator.Link(e.TitleID),
	}
}
