package fars

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	flagUnlockDoor = 1 << 2
	flagRestrict   = 1 << 1
	flagNoSauna    = 1 << 0
	absentField    = "0"
)

// GKey is a time-bounded physical access grant.
type GKey struct {
	Username            string    `json:"username"`
	GroupName           string    `json:"group_name,omitempty"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	UnlockDoor          bool      `json:"unlock_door"`
	RestrictKeys        bool      `json:"restrict_keys"`
	DisableSaunaHeating bool      `json:"disable_sauna_heating"`
	Code                string    `json:"code,omitempty"`
}

// ParseGKeys decodes the line format served by /api/gkey:
//
//	username:group:start:end:flags:code
//
// Blank lines are skipped.
func ParseGKeys(body string) ([]GKey, error) {
	var out []GKey
	for i, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		key, err := ParseGKey(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, key)
	}
	return out, nil
}

// ParseGKey decodes a single key-access line. A group or code of "0" is
// treated as absent.
func ParseGKey(line string) (GKey, error) {
	fields := strings.SplitN(line, ":", 6)
	if len(fields) < 5 {
		return GKey{}, fmt.Errorf("want at least 5 fields, got %d", len(fields))
	}
	start, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return GKey{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return GKey{}, fmt.Errorf("parse end: %w", err)
	}
	flags, err := strconv.Atoi(fields[4])
	if err != nil {
		return GKey{}, fmt.Errorf("parse flags: %w", err)
	}

	key := GKey{
		Username:            fields[0],
		StartDate:           time.Unix(start, 0),
		EndDate:             time.Unix(end, 0),
		UnlockDoor:          flags&flagUnlockDoor != 0,
		RestrictKeys:        flags&flagRestrict != 0,
		DisableSaunaHeating: flags&flagNoSauna != 0,
	}
	if group := fields[1]; group != absentField {
		key.GroupName = group
	}
	if len(fields) == 6 && fields[5] != absentField {
		key.Code = fields[5]
	}
	return key, nil
}
