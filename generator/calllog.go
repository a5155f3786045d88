package generator

import (
	"slices"
	"sync"
	"time"
)

// CallLog records tool invocations for a single run. Each run owns its own log.
type CallLog struct {
	mu      sync.Mutex
	records []CallRecord
	now     func() time.Time
}

func NewCallLog() *CallLog {
	return &CallLog{now: time.Now}
}

// Record appends an entry stamped with the wall clock at second resolution.
func (l *CallLog) Record(function, platform string) CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := CallRecord{
		Function: function,
		Platform: platform,
		Time:     l.now().Format("15:04:05"),
	}
	l.records = append(l.records, rec)
	return rec
}

// Records returns the entries in call order.
func (l *CallLog) Records() []CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

func (l *CallLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
