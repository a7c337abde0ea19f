package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/continue-watching/internal/errors"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/store"
)

func (s *Server) registerSlotRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSlots",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/slots",
		Summary:     "List record slots",
		Description: "Lists the stored record slots with their size, for diagnosing an empty carousel",
		Tags:        []string{"Slots"},
	}, s.handleListSlots)
}

// SlotResponse describes one stored slot.
type SlotResponse struct {
	store.SlotInfo
	Known bool `json:"known" doc:"Whether the slot is one of the records read by the service"`
}

// SlotsResponse lists stored slots.
type SlotsResponse struct {
	Slots   []SlotResponse `json:"slots"`
	Missing []string       `json:"missing" doc:"Records that have never been written"`
}

// SlotsOutput wraps the slot list for Huma.
type SlotsOutput struct {
	Body SlotsResponse
}

func (s *Server) handleListSlots(ctx context.Context, _ *struct{}) (*SlotsOutput, error) {
	if s.slots == nil {
		return nil, toAPIError(domainerrors.Unavailable("storage not configured"))
	}

	infos, err := s.slots.ListSlots(ctx)
	if err != nil {
		s.logger.Error("Failed to list slots", "error", err)
		return nil, toAPIError(domainerrors.Wrap(err, domainerrors.CodeUnavailable, "failed to list slots"))
	}

	resp := SlotsResponse{
		Slots:   make([]SlotResponse, 0, len(infos)),
		Missing: []string{},
	}
	present := make(map[string]bool, len(infos))
	for _, info := range infos {
		present[info.Name] = true
		resp.Slots = append(resp.Slots, SlotResponse{SlotInfo: info, Known: records.IsRecordSlot(info.Name)})
	}
	for _, name := range records.Slots {
		if !present[name] {
			resp.Missing = append(resp.Missing, name)
		}
	}

	return &SlotsOutput{Body: resp}, nil
}
