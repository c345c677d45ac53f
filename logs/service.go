package logs

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Kaptaan1992/honeybees-daycare/realtime"
	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/pkg/errors"
)

var (
	ErrEmptyChildId  = errors.New("childId cannot be empty")
	ErrEntryNotFound = errors.New("entry not found")
	ErrUnknownEntry  = errors.New("unknown entry kind")
	ErrBadEntry      = errors.New("entry payload could not be decoded")
	ErrBadMonth      = errors.New("month must look like YYYY-MM")
	ErrLogNotFound   = store.ErrDailyLogNotFound
)

// Entry kinds, named after the sub-collections they live in.
const (
	EntryMeals       = "meals"
	EntryBottles     = "bottles"
	EntryNaps        = "naps"
	EntryDiapers     = "diapers"
	EntryActivities  = "activities"
	EntryMedications = "medications"
	EntryIncidents   = "incidents"
)

type Service interface {
	GetOrCreateLog(ctx context.Context, childId, date string) (store.DailyLog, error)
	ListLogsByDate(ctx context.Context, date string) ([]store.DailyLog, error)
	ListLogsByChild(ctx context.Context, childId string) ([]store.DailyLog, error)
	UpdateLog(ctx context.Context, request LogTransport) (store.DailyLog, error)
	DeleteLog(ctx context.Context, logId string) error
	CheckIn(ctx context.Context, childId, date, arrivalTime string) (store.DailyLog, error)
	CheckOut(ctx context.Context, childId, date, departureTime string) (store.DailyLog, error)
	UndoCheckOut(ctx context.Context, childId, date string) (store.DailyLog, error)
	ResetLog(ctx context.Context, childId, date string) (store.DailyLog, error)
	AddEntry(ctx context.Context, childId, date, kind string, payload json.RawMessage) (store.DailyLog, error)
	UpdateEntry(ctx context.Context, childId, date, kind, entryId string, payload json.RawMessage) (store.DailyLog, error)
	RemoveEntry(ctx context.Context, childId, date, kind, entryId string) (store.DailyLog, error)
	AttendanceForMonth(ctx context.Context, month string) ([]AttendanceSummary, error)
}

// AttendanceSummary is one child's presence record for a month.
type AttendanceSummary struct {
	ChildId      string   `json:"childId"`
	DaysPresent  int      `json:"daysPresent"`
	DatesPresent []string `json:"datesPresent"`
}

type LogService struct {
	Store interface {
		GetDailyLogs(ctx context.Context) []store.DailyLog
		GetOrCreateDailyLog(ctx context.Context, childId, date string) store.DailyLog
		UpdateDailyLog(ctx context.Context, log store.DailyLog)
		DeleteDailyLog(ctx context.Context, id string)
		CheckIn(ctx context.Context, childId, date, arrivalTime string) store.DailyLog
		CheckOut(ctx context.Context, childId, date, departureTime string) store.DailyLog
		UndoCheckOut(ctx context.Context, childId, date string) store.DailyLog
		ResetDailyLog(ctx context.Context, childId, date string) store.DailyLog
	} `inject:""`
	Bus             *realtime.Bus           `inject:""`
	StringGenerator *shared.StringGenerator `inject:""`
}

func (l *LogService) publish(log store.DailyLog) {
	record := log
	l.Bus.Publish(realtime.Event{
		Type:     realtime.EventDailyLogChanged,
		Table:    store.TableDailyLogs,
		DailyLog: &record,
	})
}

func normalizeDate(date string) string {
	if date == "" {
		return shared.TodayDate()
	}
	return date
}

func (l *LogService) GetOrCreateLog(ctx context.Context, childId, date string) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	return l.Store.GetOrCreateDailyLog(ctx, childId, normalizeDate(date)), nil
}

func (l *LogService) ListLogsByDate(ctx context.Context, date string) ([]store.DailyLog, error) {
	date = normalizeDate(date)
	logs := []store.DailyLog{}
	for _, log := range l.Store.GetDailyLogs(ctx) {
		if log.Date == date {
			logs = append(logs, log)
		}
	}
	return logs, nil
}

func (l *LogService) ListLogsByChild(ctx context.Context, childId string) ([]store.DailyLog, error) {
	if childId == "" {
		return nil, ErrEmptyChildId
	}
	logs := []store.DailyLog{}
	for _, log := range l.Store.GetDailyLogs(ctx) {
		if log.ChildId == childId {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})
	return logs, nil
}

// UpdateLog applies the scalar fields of the transport to the (childId, date)
// log. Sub-collections are managed through the entry endpoints and are left
// untouched here.
func (l *LogService) UpdateLog(ctx context.Context, request LogTransport) (store.DailyLog, error) {
	if request.ChildId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}

	log := l.Store.GetOrCreateDailyLog(ctx, request.ChildId, normalizeDate(request.Date))
	if request.ArrivalTime != "" {
		log.ArrivalTime = request.ArrivalTime
	}
	if request.DepartureTime != "" {
		log.DepartureTime = request.DepartureTime
	}
	if request.OverallMood != "" {
		log.OverallMood = store.Mood(request.OverallMood)
	}
	if request.TeacherNotes != nil {
		log.TeacherNotes = *request.TeacherNotes
	}
	if request.ActivityNotes != nil {
		log.ActivityNotes = *request.ActivityNotes
	}
	if request.SuppliesNeeded != nil {
		log.SuppliesNeeded = *request.SuppliesNeeded
	}
	if request.IsPresent != nil {
		log.IsPresent = *request.IsPresent
	}
	if request.IncludeTrends != nil {
		log.IncludeTrends = *request.IncludeTrends
	}

	l.Store.UpdateDailyLog(ctx, log)
	l.publish(log)
	return log, nil
}

func (l *LogService) DeleteLog(ctx context.Context, logId string) error {
	for _, log := range l.Store.GetDailyLogs(ctx) {
		if log.Id == logId {
			l.Store.DeleteDailyLog(ctx, logId)
			l.Bus.Publish(realtime.Event{Type: realtime.EventDataChanged, Table: store.TableDailyLogs})
			return nil
		}
	}
	return ErrLogNotFound
}

func (l *LogService) CheckIn(ctx context.Context, childId, date, arrivalTime string) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	if arrivalTime == "" {
		arrivalTime = shared.CurrentTime()
	}
	log := l.Store.CheckIn(ctx, childId, normalizeDate(date), arrivalTime)
	l.publish(log)
	return log, nil
}

func (l *LogService) CheckOut(ctx context.Context, childId, date, departureTime string) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	if departureTime == "" {
		departureTime = shared.CurrentTime()
	}
	log := l.Store.CheckOut(ctx, childId, normalizeDate(date), departureTime)
	l.publish(log)
	return log, nil
}

func (l *LogService) UndoCheckOut(ctx context.Context, childId, date string) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	log := l.Store.UndoCheckOut(ctx, childId, normalizeDate(date))
	l.publish(log)
	return log, nil
}

func (l *LogService) ResetLog(ctx context.Context, childId, date string) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	log := l.Store.ResetDailyLog(ctx, childId, normalizeDate(date))
	l.publish(log)
	return log, nil
}

func decodeEntry(payload json.RawMessage, out interface{}) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(ErrBadEntry, err.Error())
	}
	return nil
}

// AddEntry decodes the payload as the given kind, assigns a fresh id and a
// default time where one is missing, and appends it to the (childId, date)
// log.
func (l *LogService) AddEntry(ctx context.Context, childId, date, kind string, payload json.RawMessage) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	log := l.Store.GetOrCreateDailyLog(ctx, childId, normalizeDate(date))
	id := l.StringGenerator.GenerateUuid()
	now := shared.CurrentTime()

	switch kind {
	case EntryMeals:
		entry := store.MealEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		if entry.Time == "" {
			entry.Time = now
		}
		log.Meals = append(log.Meals, entry)
	case EntryBottles:
		entry := store.BottleEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		if entry.Time == "" {
			entry.Time = now
		}
		log.Bottles = append(log.Bottles, entry)
	case EntryNaps:
		entry := store.NapEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		if entry.StartTime == "" {
			entry.StartTime = now
		}
		log.Naps = append(log.Naps, entry)
	case EntryDiapers:
		entry := store.DiaperPottyEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		if entry.Time == "" {
			entry.Time = now
		}
		log.Diapers = append(log.Diapers, entry)
	case EntryActivities:
		entry := store.ActivityEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		log.Activities = append(log.Activities, entry)
	case EntryMedications:
		entry := store.MedicationEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		if entry.Time == "" {
			entry.Time = now
		}
		log.Medications = append(log.Medications, entry)
	case EntryIncidents:
		entry := store.IncidentEntry{}
		if err := decodeEntry(payload, &entry); err != nil {
			return store.DailyLog{}, err
		}
		entry.Id = id
		if entry.Time == "" {
			entry.Time = now
		}
		log.Incidents = append(log.Incidents, entry)
	default:
		return store.DailyLog{}, ErrUnknownEntry
	}

	l.Store.UpdateDailyLog(ctx, log)
	l.publish(log)
	return log, nil
}

// UpdateEntry replaces the entry with entryId inside the named
// sub-collection. The payload's id field, if present, is ignored.
func (l *LogService) UpdateEntry(ctx context.Context, childId, date, kind, entryId string, payload json.RawMessage) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	log := l.Store.GetOrCreateDailyLog(ctx, childId, normalizeDate(date))
	found := false

	switch kind {
	case EntryMeals:
		for i := range log.Meals {
			if log.Meals[i].Id == entryId {
				entry := store.MealEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Meals[i] = entry
				found = true
			}
		}
	case EntryBottles:
		for i := range log.Bottles {
			if log.Bottles[i].Id == entryId {
				entry := store.BottleEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Bottles[i] = entry
				found = true
			}
		}
	case EntryNaps:
		for i := range log.Naps {
			if log.Naps[i].Id == entryId {
				entry := store.NapEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Naps[i] = entry
				found = true
			}
		}
	case EntryDiapers:
		for i := range log.Diapers {
			if log.Diapers[i].Id == entryId {
				entry := store.DiaperPottyEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Diapers[i] = entry
				found = true
			}
		}
	case EntryActivities:
		for i := range log.Activities {
			if log.Activities[i].Id == entryId {
				entry := store.ActivityEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Activities[i] = entry
				found = true
			}
		}
	case EntryMedications:
		for i := range log.Medications {
			if log.Medications[i].Id == entryId {
				entry := store.MedicationEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Medications[i] = entry
				found = true
			}
		}
	case EntryIncidents:
		for i := range log.Incidents {
			if log.Incidents[i].Id == entryId {
				entry := store.IncidentEntry{}
				if err := decodeEntry(payload, &entry); err != nil {
					return store.DailyLog{}, err
				}
				entry.Id = entryId
				log.Incidents[i] = entry
				found = true
			}
		}
	default:
		return store.DailyLog{}, ErrUnknownEntry
	}

	if !found {
		return store.DailyLog{}, ErrEntryNotFound
	}
	l.Store.UpdateDailyLog(ctx, log)
	l.publish(log)
	return log, nil
}

func (l *LogService) RemoveEntry(ctx context.Context, childId, date, kind, entryId string) (store.DailyLog, error) {
	if childId == "" {
		return store.DailyLog{}, ErrEmptyChildId
	}
	log := l.Store.GetOrCreateDailyLog(ctx, childId, normalizeDate(date))
	found := false

	switch kind {
	case EntryMeals:
		kept := log.Meals[:0]
		for _, e := range log.Meals {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Meals = kept
	case EntryBottles:
		kept := log.Bottles[:0]
		for _, e := range log.Bottles {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Bottles = kept
	case EntryNaps:
		kept := log.Naps[:0]
		for _, e := range log.Naps {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Naps = kept
	case EntryDiapers:
		kept := log.Diapers[:0]
		for _, e := range log.Diapers {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Diapers = kept
	case EntryActivities:
		kept := log.Activities[:0]
		for _, e := range log.Activities {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Activities = kept
	case EntryMedications:
		kept := log.Medications[:0]
		for _, e := range log.Medications {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Medications = kept
	case EntryIncidents:
		kept := log.Incidents[:0]
		for _, e := range log.Incidents {
			if e.Id == entryId {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		log.Incidents = kept
	default:
		return store.DailyLog{}, ErrUnknownEntry
	}

	if !found {
		return store.DailyLog{}, ErrEntryNotFound
	}
	l.Store.UpdateDailyLog(ctx, log)
	l.publish(log)
	return log, nil
}

// AttendanceForMonth aggregates presence by child for a YYYY-MM month.
func (l *LogService) AttendanceForMonth(ctx context.Context, month string) ([]AttendanceSummary, error) {
	if len(month) != 7 || month[4] != '-' {
		return nil, ErrBadMonth
	}

	byChild := map[string][]string{}
	for _, log := range l.Store.GetDailyLogs(ctx) {
		if !log.IsPresent || !strings.HasPrefix(log.Date, month+"-") {
			continue
		}
		byChild[log.ChildId] = append(byChild[log.ChildId], log.Date)
	}

	summaries := []AttendanceSummary{}
	for childId, dates := range byChild {
		sort.Strings(dates)
		summaries = append(summaries, AttendanceSummary{
			ChildId:      childId,
			DaysPresent:  len(dates),
			DatesPresent: dates,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ChildId < summaries[j].ChildId
	})
	return summaries, nil
}

// ServiceMiddleware is a chainable behavior modifier for LogService.
type ServiceMiddleware func(LogService) LogService
