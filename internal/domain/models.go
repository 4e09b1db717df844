package domain

import "strings"

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

func ParseResult(s string) (Result, error) {
	switch r := Result(s); r {
	case ResultWin, ResultLoss, ResultDraw:
		return r, nil
	}
	return "", ErrUnknownResult
}

// Delta is the contribution of a single outcome to the net wins line.
func (r Result) Delta() int {
	switch r {
	case ResultWin:
		return 1
	case ResultLoss:
		return -1
	}
	return 0
}

type Promotion struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Nickname string `json:"nickname,omitempty" yaml:"nickname"`
}

type Event struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Location    string `json:"location,omitempty" yaml:"location"`
	DateOf      Date   `json:"dateof" yaml:"dateof"`
	PromotionID string `json:"promotion,omitempty" yaml:"promotion"`
}

type Participant struct {
	FighterID string `json:"fighter"`
	Name      string `json:"name"`
	Result    Result `json:"result"`
}

type Fight struct {
	ID           string        `json:"id"`
	Event        Event         `json:"event"`
	CardIndex    int           `json:"card_index"`
	Method       string        `json:"method,omitempty"`
	MethodDetail string        `json:"method_detail,omitempty"`
	Round        int           `json:"round,omitempty"`
	RoundTime    string        `json:"round_time,omitempty"`
	Referee      string        `json:"referee,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// Opponent returns the participant that is not fighterID.
func (f Fight) Opponent(fighterID string) (Participant, bool) {
	for _, p := range f.Participants {
		if p.FighterID != fighterID {
			return p, true
		}
	}
	return Participant{}, false
}

type FightParticipation struct {
	Fight  Fight  `json:"fight"`
	Result Result `json:"result"`

	// net wins after this fight
	Line int `json:"line"`
}

type Fighter struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Nickname    string               `json:"nickname,omitempty"`
	WeightClass string               `json:"class,omitempty"`
	WinCount    int                  `json:"win_count"`
	LossCount   int                  `json:"loss_count"`
	FightCount  int                  `json:"fight_count"`
	Fights      []FightParticipation `json:"fights,omitempty"`
}

// Brief drops the fight history, leaving the summary fields used by the table.
func (f Fighter) Brief() Fighter {
	f.Fights = nil
	return f
}

// Domain is the scale domain over the unfiltered fighter universe.
type Domain struct {
	MinDate       Date `json:"min_date"`
	MaxDate       Date `json:"max_date"`
	MinLine       int  `json:"min_line"`
	MaxLine       int  `json:"max_line"`
	MaxFightCount int  `json:"max_fight_count"`
	MaxWinCount   int  `json:"max_win_count"`
	MaxLossCount  int  `json:"max_loss_count"`
	FighterCount  int  `json:"fighter_count"`
}

type Filter struct {
	WinCount    int    `json:"win_count,omitempty"`
	LossCount   int    `json:"loss_count,omitempty"`
	TotalCount  int    `json:"total_count,omitempty"`
	Search      string `json:"search,omitempty"`
	Promotion   string `json:"promotion,omitempty"`
	WeightClass string `json:"weight_class,omitempty"`
}

// DefaultFilter is what a reset restores.
func DefaultFilter() Filter {
	return Filter{WinCount: 0, LossCount: 0, TotalCount: 1}
}

// InitialFilter is applied on first load so the table does not open with every fighter.
func InitialFilter() Filter {
	return Filter{WinCount: 5, TotalCount: 5}
}

// Normalize clamps negative thresholds and keeps the total at least as large
// as either the win or loss threshold, mirroring the table sliders.
func (f Filter) Normalize() Filter {
	f.WinCount = max(f.WinCount, 0)
	f.LossCount = max(f.LossCount, 0)
	f.TotalCount = max(f.TotalCount, f.WinCount, f.LossCount)
	f.Search = strings.TrimSpace(f.Search)
	return f
}
