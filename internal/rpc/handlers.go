package rpc

import (
	"context"
	"net/http"

	"fight-timeline/internal/constants"

	"connectrpc.com/connect"
)

const (
	FightTimelineGetBoundsProcedure                  = constants.FightTimelinePath + "GetBounds"
	FightTimelineGetBriefFightersProcedure           = constants.FightTimelinePath + "GetBriefFighters"
	FightTimelineGetFightersProcedure                = constants.FightTimelinePath + "GetFighters"
	FightTimelineGetFightProcedure                   = constants.FightTimelinePath + "GetFight"
	FightTimelineGetOpponentProcedure                = constants.FightTimelinePath + "GetOpponent"
	FightTimelineGetInitialSelectedFightersProcedure = constants.FightTimelinePath + "GetInitialSelectedFighters"
	FightTimelineGetEventsProcedure                  = constants.FightTimelinePath + "GetEvents"
	FightTimelineGetPromotionsProcedure              = constants.FightTimelinePath + "GetPromotions"

	TimelineSessionCreateSessionProcedure = constants.TimelineSessionPath + "CreateSession"
	TimelineSessionDispatchProcedure      = constants.TimelineSessionPath + "Dispatch"
	TimelineSessionGetSceneProcedure      = constants.TimelineSessionPath + "GetScene"
	TimelineSessionCloseSessionProcedure  = constants.TimelineSessionPath + "CloseSession"
)

type FightTimelineHandler interface {
	GetBounds(context.Context, *connect.Request[GetBoundsRequest]) (*connect.Response[GetBoundsResponse], error)
	GetBriefFighters(context.Context, *connect.Request[GetBriefFightersRequest]) (*connect.Response[FightersResponse], error)
	GetFighters(context.Context, *connect.Request[GetFightersRequest]) (*connect.Response[FightersResponse], error)
	GetFight(context.Context, *connect.Request[GetFightRequest]) (*connect.Response[GetFightResponse], error)
	GetOpponent(context.Context, *connect.Request[GetOpponentRequest]) (*connect.Response[GetOpponentResponse], error)
	GetInitialSelectedFighters(context.Context, *connect.Request[GetInitialSelectedFightersRequest]) (*connect.Response[FightersResponse], error)
	GetEvents(context.Context, *connect.Request[GetEventsRequest]) (*connect.Response[GetEventsResponse], error)
	GetPromotions(context.Context, *connect.Request[GetPromotionsRequest]) (*connect.Response[GetPromotionsResponse], error)
}

type TimelineSessionHandler interface {
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error)
	Dispatch(context.Context, *connect.Request[DispatchRequest]) (*connect.Response[DispatchResponse], error)
	GetScene(context.Context, *connect.Request[GetSceneRequest]) (*connect.Response[GetSceneResponse], error)
	CloseSession(context.Context, *connect.Request[CloseSessionRequest]) (*connect.Response[CloseSessionResponse], error)
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// NewFightTimelineHandler builds the data-access service handler and returns
// the path to mount it on.
func NewFightTimelineHandler(svc FightTimelineHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(FightTimelineGetBoundsProcedure, connect.NewUnaryHandler(FightTimelineGetBoundsProcedure, svc.GetBounds, opts...))
	mux.Handle(FightTimelineGetBriefFightersProcedure, connect.NewUnaryHandler(FightTimelineGetBriefFightersProcedure, svc.GetBriefFighters, opts...))
	mux.Handle(FightTimelineGetFightersProcedure, connect.NewUnaryHandler(FightTimelineGetFightersProcedure, svc.GetFighters, opts...))
	mux.Handle(FightTimelineGetFightProcedure, connect.NewUnaryHandler(FightTimelineGetFightProcedure, svc.GetFight, opts...))
	mux.Handle(FightTimelineGetOpponentProcedure, connect.NewUnaryHandler(FightTimelineGetOpponentProcedure, svc.GetOpponent, opts...))
	mux.Handle(FightTimelineGetInitialSelectedFightersProcedure, connect.NewUnaryHandler(FightTimelineGetInitialSelectedFightersProcedure, svc.GetInitialSelectedFighters, opts...))
	mux.Handle(FightTimelineGetEventsProcedure, connect.NewUnaryHandler(FightTimelineGetEventsProcedure, svc.GetEvents, opts...))
	mux.Handle(FightTimelineGetPromotionsProcedure, connect.NewUnaryHandler(FightTimelineGetPromotionsProcedure, svc.GetPromotions, opts...))
	return constants.FightTimelinePath, mux
}

func NewTimelineSessionHandler(svc TimelineSessionHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(TimelineSessionCreateSessionProcedure, connect.NewUnaryHandler(TimelineSessionCreateSessionProcedure, svc.CreateSession, opts...))
	mux.Handle(TimelineSessionDispatchProcedure, connect.NewUnaryHandler(TimelineSessionDispatchProcedure, svc.Dispatch, opts...))
	mux.Handle(TimelineSessionGetSceneProcedure, connect.NewUnaryHandler(TimelineSessionGetSceneProcedure, svc.GetScene, opts...))
	mux.Handle(TimelineSessionCloseSessionProcedure, connect.NewUnaryHandler(TimelineSessionCloseSessionProcedure, svc.CloseSession, opts...))
	return constants.TimelineSessionPath, mux
}
