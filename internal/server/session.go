package server

import (
	"context"

	"fight-timeline/internal/rpc"
	"fight-timeline/internal/session"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

// SessionServer drives interactive chart sessions over connect.
type SessionServer struct {
	sessions *session.Manager
	logger   zerolog.Logger
}

var _ rpc.TimelineSessionHandler = (*SessionServer)(nil)

func NewSessionServer(sessions *session.Manager, logger zerolog.Logger) *SessionServer {
	return &SessionServer{sessions: sessions, logger: logger}
}

func (s *SessionServer) fail(ctx context.Context, procedure string, err error) error {
	return failed(ctx, s.logger, procedure, err)
}

func (s *SessionServer) CreateSession(ctx context.Context, _ *connect.Request[rpc.CreateSessionRequest]) (*connect.Response[rpc.CreateSessionResponse], error) {
	sess, err := s.sessions.Create(ctx)
	if sess == nil {
		return nil, s.fail(ctx, "CreateSession", err)
	}

	resp := &rpc.CreateSessionResponse{
		SessionID: sess.ID,
		State:     sess.State(),
		Scene:     sess.Scene(),
	}
	if err != nil {
		resp.Warning = err.Error()
	}
	return connect.NewResponse(resp), nil
}

func (s *SessionServer) Dispatch(ctx context.Context, req *connect.Request[rpc.DispatchRequest]) (*connect.Response[rpc.DispatchResponse], error) {
	sess, err := s.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, s.fail(ctx, "Dispatch", err)
	}

	update, err := sess.Dispatch(ctx, req.Msg.Action)
	if err != nil {
		return nil, s.fail(ctx, "Dispatch", err)
	}
	return connect.NewResponse(&rpc.DispatchResponse{State: update.State, Changes: update.Changes}), nil
}

func (s *SessionServer) GetScene(ctx context.Context, req *connect.Request[rpc.GetSceneRequest]) (*connect.Response[rpc.GetSceneResponse], error) {
	sess, err := s.sessions.Get(req.Msg.SessionID)
	if err != nil {
		return nil, s.fail(ctx, "GetScene", err)
	}
	return connect.NewResponse(&rpc.GetSceneResponse{State: sess.State(), Scene: sess.Scene()}), nil
}

func (s *SessionServer) CloseSession(ctx context.Context, req *connect.Request[rpc.CloseSessionRequest]) (*connect.Response[rpc.CloseSessionResponse], error) {
	if err := s.sessions.Close(req.Msg.SessionID); err != nil {
		return nil, s.fail(ctx, "CloseSession", err)
	}
	return connect.NewResponse(&rpc.CloseSessionResponse{}), nil
}
