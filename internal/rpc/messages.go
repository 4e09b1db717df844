package rpc

import (
	"fight-timeline/internal/domain"
	"fight-timeline/internal/scene"
	"fight-timeline/internal/selection"
	"fight-timeline/internal/session"
)

type GetBoundsRequest struct{}

type GetBoundsResponse struct {
	Domain domain.Domain `json:"domain"`
}

type GetBriefFightersRequest struct {
	Filter domain.Filter `json:"filter"`
}

type GetFightersRequest struct {
	IDs []string `json:"ids"`
}

type GetInitialSelectedFightersRequest struct{}

// FightersResponse is shared by every call returning a fighter list.
type FightersResponse struct {
	Fighters []domain.Fighter `json:"fighters"`
}

type GetFightRequest struct {
	ID string `json:"id"`
}

type GetFightResponse struct {
	Fight domain.Fight `json:"fight"`
}

type GetOpponentRequest struct {
	FightID   string `json:"fight_id"`
	FighterID string `json:"fighter_id"`
}

type GetOpponentResponse struct {
	Fighter domain.Fighter `json:"fighter"`
}

type GetEventsRequest struct{}

type GetEventsResponse struct {
	Events []domain.Event `json:"events"`
}

type GetPromotionsRequest struct{}

type GetPromotionsResponse struct {
	Promotions []domain.Promotion `json:"promotions"`
}

type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	SessionID string          `json:"session_id"`
	State     selection.State `json:"state"`
	Scene     scene.Scene     `json:"scene"`

	// set when some fighters were left off the chart for bad data
	Warning string `json:"warning,omitempty"`
}

type DispatchRequest struct {
	SessionID string         `json:"session_id"`
	Action    session.Action `json:"action"`
}

type DispatchResponse struct {
	State   selection.State `json:"state"`
	Changes []scene.Change  `json:"changes"`
}

type GetSceneRequest struct {
	SessionID string `json:"session_id"`
}

type GetSceneResponse struct {
	State selection.State `json:"state"`
	Scene scene.Scene     `json:"scene"`
}

type CloseSessionRequest struct {
	SessionID string `json:"session_id"`
}

type CloseSessionResponse struct{}
