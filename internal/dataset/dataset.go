// Package dataset reads fight data from YAML files and writes it to the
// database through the repositories.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"fight-timeline/internal/domain"

	"gopkg.in/yaml.v3"
)

type Dataset struct {
	Promotions []domain.Promotion `yaml:"promotions"`
	Events     []EventRecord      `yaml:"events"`
	Fighters   []FighterRecord    `yaml:"fighters"`
	Fights     []FightRecord      `yaml:"fights"`
}

type EventRecord struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Location  string `yaml:"location"`
	Date      string `yaml:"dateof"`
	Promotion string `yaml:"promotion"`
}

type FighterRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Nickname    string `yaml:"nickname"`
	WeightClass string `yaml:"class"`

	// part of the default chart selection
	Initial bool `yaml:"initial"`
}

type FightRecord struct {
	ID           string       `yaml:"id"`
	Event        string       `yaml:"event"`
	CardIndex    int          `yaml:"card_index"`
	Method       string       `yaml:"method"`
	MethodDetail string       `yaml:"method_detail"`
	Round        int          `yaml:"round"`
	RoundTime    string       `yaml:"round_time"`
	Referee      string       `yaml:"referee"`
	Fighters     []SideRecord `yaml:"fighters"`
}

type SideRecord struct {
	Fighter string `yaml:"fighter"`
	Result  string `yaml:"result"`
}

var ErrInvalidDataset = errors.New("invalid dataset")

func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a YAML dataset. Unknown keys are rejected so typos in field
// names do not silently drop data.
func Decode(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &ds, nil
}

// Validate checks ids, references, dates and results. Every problem found is
// reported, joined into one error.
func (ds *Dataset) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidDataset, fmt.Sprintf(format, args...)))
	}

	promotions := make(map[string]struct{}, len(ds.Promotions))
	for i, p := range ds.Promotions {
		if p.ID == "" {
			fail("promotion %d has no id", i)
			continue
		}
		if _, dup := promotions[p.ID]; dup {
			fail("duplicate promotion %s", p.ID)
		}
		promotions[p.ID] = struct{}{}
	}

	events := make(map[string]struct{}, len(ds.Events))
	for i, e := range ds.Events {
		if e.ID == "" {
			fail("event %d has no id", i)
			continue
		}
		if _, dup := events[e.ID]; dup {
			fail("duplicate event %s", e.ID)
		}
		events[e.ID] = struct{}{}
		if _, err := domain.ParseDate(e.Date); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", e.ID, err))
		}
		if e.Promotion != "" {
			if _, ok := promotions[e.Promotion]; !ok {
				fail("event %s references unknown promotion %s", e.ID, e.Promotion)
			}
		}
	}

	fighters := make(map[string]struct{}, len(ds.Fighters))
	for i, f := range ds.Fighters {
		if f.ID == "" {
			fail("fighter %d has no id", i)
			continue
		}
		if _, dup := fighters[f.ID]; dup {
			fail("duplicate fighter %s", f.ID)
		}
		fighters[f.ID] = struct{}{}
	}

	for i, f := range ds.Fights {
		name := f.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if _, ok := events[f.Event]; !ok {
			fail("fight %s references unknown event %q", name, f.Event)
		}
		if len(f.Fighters) == 0 || len(f.Fighters) > 2 {
			fail("fight %s has %d fighters", name, len(f.Fighters))
		}
		for _, side := range f.Fighters {
			if _, ok := fighters[side.Fighter]; !ok {
				fail("fight %s references unknown fighter %q", name, side.Fighter)
			}
			if _, err := domain.ParseResult(side.Result); err != nil {
				errs = append(errs, &domain.DataError{FighterID: side.Fighter, FightID: f.ID, Err: fmt.Errorf("%w %q", err, side.Result)})
			}
		}
	}

	return errors.Join(errs...)
}

// toDomain converts validated records. Callers must run Validate first.
func (ds *Dataset) toDomain() ([]domain.Event, []domain.Fighter, []domain.Fight, []string) {
	events := make([]domain.Event, len(ds.Events))
	byID := make(map[string]domain.Event, len(ds.Events))
	for i, e := range ds.Events {
		date, _ := domain.ParseDate(e.Date)
		events[i] = domain.Event{
			ID:          e.ID,
			Name:        e.Name,
			Location:    e.Location,
			DateOf:      date,
			PromotionID: e.Promotion,
		}
		byID[e.ID] = events[i]
	}

	fighters := make([]domain.Fighter, len(ds.Fighters))
	var initial []string
	for i, f := range ds.Fighters {
		fighters[i] = domain.Fighter{
			ID:          f.ID,
			Name:        f.Name,
			Nickname:    f.Nickname,
			WeightClass: f.WeightClass,
		}
		if f.Initial {
			initial = append(initial, f.ID)
		}
	}

	fights := make([]domain.Fight, len(ds.Fights))
	for i, f := range ds.Fights {
		fight := domain.Fight{
			ID:           f.ID,
			Event:        byID[f.Event],
			CardIndex:    f.CardIndex,
			Method:       f.Method,
			MethodDetail: f.MethodDetail,
			Round:        f.Round,
			RoundTime:    f.RoundTime,
			Referee:      f.Referee,
		}
		for _, side := range f.Fighters {
			fight.Participants = append(fight.Participants, domain.Participant{
				FighterID: side.Fighter,
				Result:    domain.Result(side.Result),
			})
		}
		fights[i] = fight
	}

	return events, fighters, fights, initial
}

//go:embed sample.yaml
var sample []byte

// Sample returns the small demo dataset bundled with the binary.
func Sample() (*Dataset, error) {
	return Decode(bytes.NewReader(sample))
}
