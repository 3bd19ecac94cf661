package model

import (
	"fmt"
	"strings"
)

// Action is a discrete trading choice for a timestep.
// The integer codes match the Discrete(5) action space; keep them stable,
// checkpoints store actions by code.
type Action int

const (
	ActionHold Action = iota
	ActionBuyULSP
	ActionSellULSP
	ActionBuyULSD
	ActionSellULSD
)

// NumActions is the size of the action space.
const NumActions = 5

var actionNames = [NumActions]string{
	"HOLD",
	"BUY_ULSP",
	"SELL_ULSP",
	"BUY_ULSD",
	"SELL_ULSD",
}

// Actions lists every valid action in code order.
func Actions() []Action {
	return []Action{ActionHold, ActionBuyULSP, ActionSellULSP, ActionBuyULSD, ActionSellULSD}
}

func (a Action) Valid() bool {
	return a >= ActionHold && a <= ActionSellULSD
}

// String returns the stable name used in CSV and JSON output.
func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("ACTION(%d)", int(a))
	}
	return actionNames[a]
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction accepts either the stable name (case-insensitive, "-" or "_")
// or the numeric code.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	norm := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for i, name := range actionNames {
		if norm == name {
			return Action(i), nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(s, "%d", &code); err == nil && fmt.Sprint(code) == s {
		if a := Action(code); a.Valid() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Fuel returns the fuel an action trades and whether the action is long.
// Hold reports ok=false.
func (a Action) Fuel() (fuel Fuel, long bool, ok bool) {
	switch a {
	case ActionBuyULSP:
		return FuelULSP, true, true
	case ActionSellULSP:
		return FuelULSP, false, true
	case ActionBuyULSD:
		return FuelULSD, true, true
	case ActionSellULSD:
		return FuelULSD, false, true
	default:
		return "", false, false
	}
}
