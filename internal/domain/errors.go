package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrMalformedDate = errors.New("malformed date")
	ErrUnknownResult = errors.New("unknown fight result")
)

// DataError marks a record that was rejected for data quality reasons.
type DataError struct {
	FighterID string
	FightID   string
	Err       error
}

func (e *DataError) Error() string {
	switch {
	case e.FighterID != "" && e.FightID != "":
		return fmt.Sprintf("fighter %s, fight %s: %v", e.FighterID, e.FightID, e.Err)
	case e.FightID != "":
		return fmt.Sprintf("fight %s: %v", e.FightID, e.Err)
	case e.FighterID != "":
		return fmt.Sprintf("fighter %s: %v", e.FighterID, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *DataError) Unwrap() error { return e.Err }
