package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// wireTurn is the client JSON shape of a turn. Pointers detect missing keys.
type wireTurn struct {
	ID   *int64  `json:"id"`
	Who  *string `json:"who"`
	Text *string `json:"text"`
}

func (w wireTurn) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.ID, validation.NotNil),
		validation.Field(&w.Who, validation.NotNil, validation.In(WhoUser, WhoAI)),
		validation.Field(&w.Text, validation.NotNil),
	)
}

// ParseHistory parses the client history JSON. An empty string means the
// field was not sent and yields ErrMissingHistory; anything that is not an
// array of well-formed turns with strictly increasing ids below MaxInt64
// yields InvalidHistoryFormat.
func ParseHistory(raw string) (History, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingHistory
	}

	var wire []wireTurn
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, InvalidHistory(err)
	}
	if wire == nil {
		return nil, InvalidHistory(errors.New("history must be an array"))
	}

	history := make(History, 0, len(wire))
	for i, w := range wire {
		if err := w.Validate(); err != nil {
			return nil, InvalidHistory(fmt.Errorf("turn %d: %w", i, err))
		}
		speaker, err := ParseWho(*w.Who)
		if err != nil {
			return nil, InvalidHistory(fmt.Errorf("turn %d: %w", i, err))
		}
		if *w.ID == math.MaxInt64 {
			return nil, InvalidHistory(fmt.Errorf("turn %d: id %d leaves no room for a later turn", i, *w.ID))
		}
		if i > 0 && *w.ID <= history[i-1].ID {
			return nil, InvalidHistory(fmt.Errorf("turn %d: id %d is not greater than %d", i, *w.ID, history[i-1].ID))
		}
		history = append(history, Turn{ID: *w.ID, Speaker: speaker, Text: *w.Text})
	}
	return history, nil
}

// MarshalJSON encodes a turn in the client wire shape.
func (t Turn) MarshalJSON() ([]byte, error) {
	who, err := t.Speaker.Who()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		ID   int64  `json:"id"`
		Who  string `json:"who"`
		Text string `json:"text"`
	}{t.ID, who, t.Text})
}
