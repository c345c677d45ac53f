package store

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrDailyLogNotFound = errors.New("daily log not found")
)

const (
	defaultArrivalTime   = "08:00"
	defaultDepartureTime = "17:30"
)

func (s *Store) getDailyLogsLocal() []DailyLog {
	logs := []DailyLog{}
	s.getLocal(CollectionDailyLogs, &logs)
	return logs
}

// GetDailyLogs reads the daily log collection. Unlike the other entities the
// cloud result is merged with the local copy, not swapped in wholesale: logs
// created offline on this device that the mirror has not yet received must
// survive the read, while per-id conflicts resolve in the mirror's favor.
func (s *Store) GetDailyLogs(ctx context.Context) []DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDailyLogs(ctx)
}

func (s *Store) getDailyLogs(ctx context.Context) []DailyLog {
	local := s.getDailyLogsLocal()
	if cloud := s.Cloud(); cloud != nil {
		remote := []DailyLog{}
		if err := cloud.SelectAll(ctx, TableDailyLogs, &remote); err == nil {
			merged := MergeDailyLogs(local, remote)
			s.setLocal(CollectionDailyLogs, merged)
			return merged
		} else {
			s.Logger.Warn(ctx, "using local daily logs, cloud read failed", "err", err.Error())
		}
	}
	return local
}

// SaveDailyLogs overwrites the collection: local synchronously, cloud
// best-effort.
func (s *Store) SaveDailyLogs(ctx context.Context, logs []DailyLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDailyLogs(ctx, logs)
}

func (s *Store) saveDailyLogs(ctx context.Context, logs []DailyLog) {
	s.setLocal(CollectionDailyLogs, logs)
	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.Upsert(ctx, TableDailyLogs, logs); err != nil {
			s.Logger.Warn(ctx, "cloud upsert of daily logs failed, local write stands", "err", err.Error())
		}
	}
}

// DeleteDailyLog removes one log from both stores. The only path that ever
// deletes a log id; lifecycle transitions always keep it.
func (s *Store) DeleteDailyLog(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.getDailyLogs(ctx)
	filtered := make([]DailyLog, 0, len(logs))
	for _, l := range logs {
		if l.Id != id {
			filtered = append(filtered, l)
		}
	}
	s.saveDailyLogs(ctx, filtered)

	if cloud := s.Cloud(); cloud != nil {
		if err := cloud.DeleteById(ctx, TableDailyLogs, id); err != nil {
			s.Logger.Warn(ctx, "cloud delete of daily log failed", "dailyLogId", id, "err", err.Error())
		}
	}
}

func newDailyLog(id, childId, date string) DailyLog {
	return DailyLog{
		Id:            id,
		ChildId:       childId,
		Date:          date,
		ArrivalTime:   defaultArrivalTime,
		DepartureTime: defaultDepartureTime,
		OverallMood:   MoodGreat,
		Meals:         []MealEntry{},
		Bottles:       []BottleEntry{},
		Naps:          []NapEntry{},
		Diapers:       []DiaperPottyEntry{},
		Activities:    []ActivityEntry{},
		Medications:   []MedicationEntry{},
		Incidents:     []IncidentEntry{},
		Status:        StatusInProgress,
		IsPresent:     false,
	}
}

// normalizeDailyLog backfills fields added after early records were
// persisted, so every log handed out has non-nil sub-collections.
func normalizeDailyLog(log DailyLog) DailyLog {
	if log.Meals == nil {
		log.Meals = []MealEntry{}
	}
	if log.Bottles == nil {
		log.Bottles = []BottleEntry{}
	}
	if log.Naps == nil {
		log.Naps = []NapEntry{}
	}
	if log.Diapers == nil {
		log.Diapers = []DiaperPottyEntry{}
	}
	if log.Activities == nil {
		log.Activities = []ActivityEntry{}
	}
	if log.Medications == nil {
		log.Medications = []MedicationEntry{}
	}
	if log.Incidents == nil {
		log.Incidents = []IncidentEntry{}
	}
	if log.Status == "" {
		log.Status = StatusInProgress
	}
	return log
}

// GetOrCreateDailyLog returns the one log for (childId, date), creating it
// with neutral defaults on first access. The id derives from the natural key,
// so repeated or concurrent calls always converge on the same record: the
// whole check-then-insert runs under the store mutex locally, and across
// devices the deterministic id makes the cloud upsert land on one row.
func (s *Store) GetOrCreateDailyLog(ctx context.Context, childId, date string) DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.getDailyLogs(ctx)
	for _, l := range logs {
		if l.ChildId == childId && l.Date == date {
			return normalizeDailyLog(l)
		}
	}

	log := newDailyLog(s.StringGenerator.GenerateDailyLogId(childId, date), childId, date)
	logs = append(logs, log)
	s.saveDailyLogs(ctx, logs)
	return log
}

// UpdateDailyLog stores a full record, replacing the entry with the same id
// or appending it when the collection does not know it yet.
func (s *Store) UpdateDailyLog(ctx context.Context, log DailyLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateDailyLog(ctx, log)
}

func (s *Store) updateDailyLog(ctx context.Context, log DailyLog) {
	logs := s.getDailyLogs(ctx)
	replaced := false
	for i, l := range logs {
		if l.Id == log.Id {
			logs[i] = log
			replaced = true
			break
		}
	}
	if !replaced {
		logs = append(logs, log)
	}
	s.saveDailyLogs(ctx, logs)
}

// mutateDailyLog applies a partial-field update to the (childId, date) log,
// creating it first if needed, and persists through the regular write
// contract.
func (s *Store) mutateDailyLog(ctx context.Context, childId, date string, mutate func(*DailyLog)) DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.getDailyLogs(ctx)
	for i, l := range logs {
		if l.ChildId == childId && l.Date == date {
			log := normalizeDailyLog(l)
			mutate(&log)
			logs[i] = log
			s.saveDailyLogs(ctx, logs)
			return log
		}
	}

	log := newDailyLog(s.StringGenerator.GenerateDailyLogId(childId, date), childId, date)
	mutate(&log)
	logs = append(logs, log)
	s.saveDailyLogs(ctx, logs)
	return log
}

// CheckIn marks the child present, records the arrival time and (re)enters
// In Progress.
func (s *Store) CheckIn(ctx context.Context, childId, date, arrivalTime string) DailyLog {
	return s.mutateDailyLog(ctx, childId, date, func(l *DailyLog) {
		l.IsPresent = true
		l.ArrivalTime = arrivalTime
		l.Status = StatusInProgress
	})
}

// CheckOut records the departure time and completes the day.
func (s *Store) CheckOut(ctx context.Context, childId, date, departureTime string) DailyLog {
	return s.mutateDailyLog(ctx, childId, date, func(l *DailyLog) {
		l.DepartureTime = departureTime
		l.Status = StatusCompleted
	})
}

// UndoCheckOut re-enters In Progress without touching the day's captured
// activity data.
func (s *Store) UndoCheckOut(ctx context.Context, childId, date string) DailyLog {
	return s.mutateDailyLog(ctx, childId, date, func(l *DailyLog) {
		l.Status = StatusInProgress
	})
}

// ResetDailyLog replaces the log with a blank record under the same id:
// every sub-collection cleared, child absent, back to In Progress. This is
// destructive and irreversible; callers must have confirmed the action.
func (s *Store) ResetDailyLog(ctx context.Context, childId, date string) DailyLog {
	return s.mutateDailyLog(ctx, childId, date, func(l *DailyLog) {
		*l = newDailyLog(l.Id, l.ChildId, l.Date)
	})
}

// MarkLogSent transitions a log to Sent after a successful (or best-effort
// assumed successful) report dispatch.
func (s *Store) MarkLogSent(ctx context.Context, logId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.getDailyLogs(ctx)
	for i, l := range logs {
		if l.Id == logId {
			logs[i].Status = StatusSent
			s.saveDailyLogs(ctx, logs)
			return nil
		}
	}
	return ErrDailyLogNotFound
}

// MergeRemoteDailyLog folds one cloud-origin row into the local collection,
// keyed by id. Used by the realtime channel; no cloud write happens here.
func (s *Store) MergeRemoteDailyLog(log DailyLog) DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.getDailyLogsLocal()
	merged := MergeDailyLogs(logs, []DailyLog{log})
	s.setLocal(CollectionDailyLogs, merged)
	return normalizeDailyLog(log)
}
