package sim

import "github.com/mpapenbr/racesim-manager-go/pkg/model"

const MaxEventLogEntries = 10

// eventLog keeps the most recent entries, oldest first
type eventLog struct {
	entries []model.RaceEventLogEntry
	limit   int
}

func newEventLog(limit int) *eventLog {
	return &eventLog{entries: make([]model.RaceEventLogEntry, 0, limit+1), limit: limit}
}

func (l *eventLog) add(entry model.RaceEventLogEntry) {
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
}

func (l *eventLog) list() []model.RaceEventLogEntry {
	ret := make([]model.RaceEventLogEntry, len(l.entries))
	copy(ret, l.entries)
	return ret
}
