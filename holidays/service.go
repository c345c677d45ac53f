package holidays

import (
	"context"
	"sort"
	"time"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

var (
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrEmptyHoliday    = errors.New("holidayId cannot be empty")
	ErrNoName          = errors.New("name is mandatory")
	ErrBadDate         = errors.New("date must be a valid calendar date")
)

// UpcomingWindowDays bounds how far ahead closures are surfaced to
// report recipients.
const UpcomingWindowDays = 30

type Service interface {
	AddHoliday(ctx context.Context, request HolidayTransport) (store.Holiday, error)
	UpdateHoliday(ctx context.Context, request HolidayTransport) (store.Holiday, error)
	ListHolidays(ctx context.Context) ([]store.Holiday, error)
	ListUpcoming(ctx context.Context, from string) ([]store.Holiday, error)
	DeleteHoliday(ctx context.Context, holidayId string) error
}

type HolidayService struct {
	Store interface {
		GetHolidays(ctx context.Context) []store.Holiday
		SaveHolidays(ctx context.Context, holidays []store.Holiday)
		DeleteHoliday(ctx context.Context, id string)
	} `inject:""`
	StringGenerator *shared.StringGenerator `inject:""`
}

func normalizeDate(value string) (string, error) {
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return "", errors.Wrap(ErrBadDate, err.Error())
	}
	return t.Format("2006-01-02"), nil
}

func (h *HolidayService) AddHoliday(ctx context.Context, request HolidayTransport) (store.Holiday, error) {
	if request.Name == "" {
		return store.Holiday{}, ErrNoName
	}
	date, err := normalizeDate(request.Date)
	if err != nil {
		return store.Holiday{}, err
	}

	holiday := store.Holiday{
		Id:    h.StringGenerator.GenerateUuid(),
		Name:  request.Name,
		Date:  date,
		Type:  store.HolidayType(request.Type),
		Notes: request.Notes,
	}
	if holiday.Type == "" {
		holiday.Type = store.HolidayClosed
	}

	holidays := h.Store.GetHolidays(ctx)
	h.Store.SaveHolidays(ctx, append(holidays, holiday))
	return holiday, nil
}

func (h *HolidayService) UpdateHoliday(ctx context.Context, request HolidayTransport) (store.Holiday, error) {
	if request.Id == "" {
		return store.Holiday{}, ErrEmptyHoliday
	}

	holidays := h.Store.GetHolidays(ctx)
	for i, holiday := range holidays {
		if holiday.Id != request.Id {
			continue
		}

		if request.Name != "" {
			holiday.Name = request.Name
		}
		if request.Date != "" {
			date, err := normalizeDate(request.Date)
			if err != nil {
				return store.Holiday{}, err
			}
			holiday.Date = date
		}
		if request.Type != "" {
			holiday.Type = store.HolidayType(request.Type)
		}
		holiday.Notes = request.Notes

		holidays[i] = holiday
		h.Store.SaveHolidays(ctx, holidays)
		return holiday, nil
	}
	return store.Holiday{}, ErrHolidayNotFound
}

func (h *HolidayService) ListHolidays(ctx context.Context) ([]store.Holiday, error) {
	holidays := h.Store.GetHolidays(ctx)
	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date < holidays[j].Date
	})
	return holidays, nil
}

// ListUpcoming returns holidays falling within UpcomingWindowDays of the
// given date, inclusive on both ends, sorted ascending. An empty from
// defaults to today.
func (h *HolidayService) ListUpcoming(ctx context.Context, from string) ([]store.Holiday, error) {
	if from == "" {
		from = shared.TodayDate()
	}
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, errors.Wrap(ErrBadDate, err.Error())
	}
	end := start.AddDate(0, 0, UpcomingWindowDays)

	upcoming := []store.Holiday{}
	for _, holiday := range h.Store.GetHolidays(ctx) {
		d, err := time.Parse("2006-01-02", holiday.Date)
		if err != nil {
			continue
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		upcoming = append(upcoming, holiday)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Date < upcoming[j].Date
	})
	return upcoming, nil
}

func (h *HolidayService) DeleteHoliday(ctx context.Context, holidayId string) error {
	for _, holiday := range h.Store.GetHolidays(ctx) {
		if holiday.Id == holidayId {
			h.Store.DeleteHoliday(ctx, holidayId)
			return nil
		}
	}
	return ErrHolidayNotFound
}

// ServiceMiddleware is a chainable behavior modifier for HolidayService.
type ServiceMiddleware func(HolidayService) HolidayService
