// Package api is a client for a remote fight timeline data server. It speaks
// the connect unary protocol with JSON bodies over fasthttp.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fight-timeline/internal/config"
	"fight-timeline/internal/constants"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/middleware"
	"fight-timeline/internal/rpc"
	"fight-timeline/internal/selection"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Client struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
	logger  zerolog.Logger
}

var _ selection.DataSource = (*Client)(nil)

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return New(cfg.DataAPIURL, logger)
}

func New(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.DataAPITimeout,
			WriteTimeout:        constants.DataAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		timeout: constants.DataAPITimeout,
		logger:  logger.With().Str("component", "data_api").Logger(),
	}
}

// RemoteError is a connect error returned by the data server. A not_found
// code unwraps to domain.ErrNotFound.
type RemoteError struct {
	Procedure string
	Status    int
	Code      string
	Message   string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Procedure, e.Code, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Procedure, e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	if e.Code == "not_found" {
		return domain.ErrNotFound
	}
	return nil
}

func (c *Client) GetBounds(ctx context.Context) (domain.Domain, error) {
	resp, err := doRequest[rpc.GetBoundsRequest, rpc.GetBoundsResponse](ctx, c, rpc.FightTimelineGetBoundsProcedure, &rpc.GetBoundsRequest{})
	if err != nil {
		return domain.Domain{}, err
	}
	return resp.Domain, nil
}

func (c *Client) GetBriefFighters(ctx context.Context, filter domain.Filter) ([]domain.Fighter, error) {
	resp, err := doRequest[rpc.GetBriefFightersRequest, rpc.FightersResponse](ctx, c, rpc.FightTimelineGetBriefFightersProcedure, &rpc.GetBriefFightersRequest{Filter: filter})
	if err != nil {
		return nil, err
	}
	return resp.Fighters, nil
}

func (c *Client) GetFighters(ctx context.Context, ids []string) ([]domain.Fighter, error) {
	resp, err := doRequest[rpc.GetFightersRequest, rpc.FightersResponse](ctx, c, rpc.FightTimelineGetFightersProcedure, &rpc.GetFightersRequest{IDs: ids})
	if err != nil {
		return nil, err
	}
	return resp.Fighters, nil
}

func (c *Client) GetFight(ctx context.Context, id string) (*domain.Fight, error) {
	resp, err := doRequest[rpc.GetFightRequest, rpc.GetFightResponse](ctx, c, rpc.FightTimelineGetFightProcedure, &rpc.GetFightRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return &resp.Fight, nil
}

func (c *Client) GetOpponent(ctx context.Context, fightID, fighterID string) (*domain.Fighter, error) {
	resp, err := doRequest[rpc.GetOpponentRequest, rpc.GetOpponentResponse](ctx, c, rpc.FightTimelineGetOpponentProcedure,
		&rpc.GetOpponentRequest{FightID: fightID, FighterID: fighterID})
	if err != nil {
		return nil, err
	}
	return &resp.Fighter, nil
}

func (c *Client) GetInitialSelectedFighters(ctx context.Context) ([]domain.Fighter, error) {
	resp, err := doRequest[rpc.GetInitialSelectedFightersRequest, rpc.FightersResponse](ctx, c, rpc.FightTimelineGetInitialSelectedFightersProcedure,
		&rpc.GetInitialSelectedFightersRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Fighters, nil
}

func (c *Client) GetEvents(ctx context.Context) ([]domain.Event, error) {
	resp, err := doRequest[rpc.GetEventsRequest, rpc.GetEventsResponse](ctx, c, rpc.FightTimelineGetEventsProcedure, &rpc.GetEventsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) GetPromotions(ctx context.Context) ([]domain.Promotion, error) {
	resp, err := doRequest[rpc.GetPromotionsRequest, rpc.GetPromotionsResponse](ctx, c, rpc.FightTimelineGetPromotionsProcedure, &rpc.GetPromotionsRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Promotions, nil
}

func doRequest[Req, Res any](ctx context.Context, client *Client, procedure string, msg *Req) (*Res, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", procedure, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + procedure)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Connect-Protocol-Version", "1")
	if id := middleware.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(client.timeout)
	}
	start := time.Now()
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		client.logger.Error().Err(err).Str("procedure", procedure).Msg("data api request failed")
		return nil, fmt.Errorf("%s: %w", procedure, err)
	}

	client.logger.Debug().
		Str("procedure", procedure).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("data api request")

	if resp.StatusCode() != fasthttp.StatusOK {
		remote := &RemoteError{Procedure: procedure, Status: resp.StatusCode(), Code: "unknown"}
		var envelope rpc.ErrorBody
		if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Code != "" {
			remote.Code = envelope.Code
			remote.Message = envelope.Message
		}
		return nil, remote
	}

	var result Res
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", procedure, err)
	}
	return &result, nil
}
