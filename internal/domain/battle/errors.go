package battle

import (
	"errors"
	"fmt"
)

// ErrMalformedBattleRecord matches any *MalformedBattleRecordError via errors.Is
var ErrMalformedBattleRecord = errors.New("malformed battle record")

// ErrGuildAbsent is returned when a per-battle view is requested for a
// battle the target guild did not fight in
var ErrGuildAbsent = errors.New("guild did not take part")

// MalformedBattleRecordError reports a battle that violates the ingestion data contract
type MalformedBattleRecordError struct {
	BattleID string
	Reason   string
}

func (e *MalformedBattleRecordError) Error() string {
	id := e.BattleID
	if id == "" {
		id = "<missing id>"
	}
	return fmt.Sprintf("malformed battle record %s: %s", id, e.Reason)
}

// Is lets errors.Is match the sentinel
func (e *MalformedBattleRecordError) Is(target error) bool {
	return target == ErrMalformedBattleRecord
}

func malformed(battleID, format string, args ...any) error {
	return &MalformedBattleRecordError{BattleID: battleID, Reason: fmt.Sprintf(format, args...)}
}
