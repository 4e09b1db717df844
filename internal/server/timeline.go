package server

import (
	"context"

	"fight-timeline/internal/rpc"
	"fight-timeline/internal/selection"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

// TimelineServer exposes the data-access calls over connect.
type TimelineServer struct {
	ds     selection.DataSource
	logger zerolog.Logger
}

var _ rpc.FightTimelineHandler = (*TimelineServer)(nil)

func NewTimelineServer(ds selection.DataSource, logger zerolog.Logger) *TimelineServer {
	return &TimelineServer{ds: ds, logger: logger}
}

func (s *TimelineServer) fail(ctx context.Context, procedure string, err error) error {
	return failed(ctx, s.logger, procedure, err)
}

func (s *TimelineServer) GetBounds(ctx context.Context, _ *connect.Request[rpc.GetBoundsRequest]) (*connect.Response[rpc.GetBoundsResponse], error) {
	dom, err := s.ds.GetBounds(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetBounds", err)
	}
	return connect.NewResponse(&rpc.GetBoundsResponse{Domain: dom}), nil
}

func (s *TimelineServer) GetBriefFighters(ctx context.Context, req *connect.Request[rpc.GetBriefFightersRequest]) (*connect.Response[rpc.FightersResponse], error) {
	fighters, err := s.ds.GetBriefFighters(ctx, req.Msg.Filter)
	if err != nil {
		return nil, s.fail(ctx, "GetBriefFighters", err)
	}
	return connect.NewResponse(&rpc.FightersResponse{Fighters: fighters}), nil
}

func (s *TimelineServer) GetFighters(ctx context.Context, req *connect.Request[rpc.GetFightersRequest]) (*connect.Response[rpc.FightersResponse], error) {
	fighters, err := s.ds.GetFighters(ctx, req.Msg.IDs)
	if err != nil {
		return nil, s.fail(ctx, "GetFighters", err)
	}
	return connect.NewResponse(&rpc.FightersResponse{Fighters: fighters}), nil
}

func (s *TimelineServer) GetFight(ctx context.Context, req *connect.Request[rpc.GetFightRequest]) (*connect.Response[rpc.GetFightResponse], error) {
	fight, err := s.ds.GetFight(ctx, req.Msg.ID)
	if err != nil {
		return nil, s.fail(ctx, "GetFight", err)
	}
	return connect.NewResponse(&rpc.GetFightResponse{Fight: *fight}), nil
}

func (s *TimelineServer) GetOpponent(ctx context.Context, req *connect.Request[rpc.GetOpponentRequest]) (*connect.Response[rpc.GetOpponentResponse], error) {
	opponent, err := s.ds.GetOpponent(ctx, req.Msg.FightID, req.Msg.FighterID)
	if err != nil {
		return nil, s.fail(ctx, "GetOpponent", err)
	}
	return connect.NewResponse(&rpc.GetOpponentResponse{Fighter: *opponent}), nil
}

func (s *TimelineServer) GetInitialSelectedFighters(ctx context.Context, _ *connect.Request[rpc.GetInitialSelectedFightersRequest]) (*connect.Response[rpc.FightersResponse], error) {
	fighters, err := s.ds.GetInitialSelectedFighters(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetInitialSelectedFighters", err)
	}
	return connect.NewResponse(&rpc.FightersResponse{Fighters: fighters}), nil
}

func (s *TimelineServer) GetEvents(ctx context.Context, _ *connect.Request[rpc.GetEventsRequest]) (*connect.Response[rpc.GetEventsResponse], error) {
	events, err := s.ds.GetEvents(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetEvents", err)
	}
	return connect.NewResponse(&rpc.GetEventsResponse{Events: events}), nil
}

func (s *TimelineServer) GetPromotions(ctx context.Context, _ *connect.Request[rpc.GetPromotionsRequest]) (*connect.Response[rpc.GetPromotionsResponse], error) {
	promotions, err := s.ds.GetPromotions(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetPromotions", err)
	}
	return connect.NewResponse(&rpc.GetPromotionsResponse{Promotions: promotions}), nil
}
