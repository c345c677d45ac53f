package logs_test

import (
	"context"
	"encoding/json"

	. "github.com/Kaptaan1992/honeybees-daycare/logs"

	"github.com/Kaptaan1992/honeybees-daycare/realtime"
	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"
	"github.com/Kaptaan1992/honeybees-daycare/store/mocks"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("LogService", func() {

	var (
		ctx      = context.Background()
		service  *LogService
		appStore *store.Store
		bus      *realtime.Bus
		events   []realtime.Event
	)

	BeforeEach(func() {
		appStore = &store.Store{
			Local:           mocks.NewMemoryLocal(),
			Logger:          shared.NewLogger("logs-test"),
			StringGenerator: &shared.StringGenerator{},
			CloudFactory: func(url, key string) (store.Mirror, error) {
				return nil, store.ErrCloudDisabled
			},
		}
		bus = &realtime.Bus{}
		events = nil
		bus.Subscribe(func(event realtime.Event) {
			events = append(events, event)
		})
		service = &LogService{
			Store:           appStore,
			Bus:             bus,
			StringGenerator: &shared.StringGenerator{},
		}
	})

	Context("GetOrCreateLog", func() {

		It("requires a child id", func() {
			_, err := service.GetOrCreateLog(ctx, "", "2025-09-15")
			Expect(errors.Cause(err)).To(Equal(ErrEmptyChildId))
		})

		It("creates once and then returns the same record", func() {
			first, err := service.GetOrCreateLog(ctx, "c1", "2025-09-15")
			Expect(err).To(BeNil())
			second, err := service.GetOrCreateLog(ctx, "c1", "2025-09-15")
			Expect(err).To(BeNil())
			Expect(second.Id).To(Equal(first.Id))
		})
	})

	Context("lifecycle endpoints", func() {

		It("checks in, out and undoes, publishing each change", func() {
			log, err := service.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			Expect(err).To(BeNil())
			Expect(log.IsPresent).To(BeTrue())
			Expect(log.ArrivalTime).To(Equal("08:05"))

			log, err = service.CheckOut(ctx, "c1", "2025-09-15", "17:02")
			Expect(err).To(BeNil())
			Expect(log.Status).To(Equal(store.StatusCompleted))

			log, err = service.UndoCheckOut(ctx, "c1", "2025-09-15")
			Expect(err).To(BeNil())
			Expect(log.Status).To(Equal(store.StatusInProgress))

			Expect(events).To(HaveLen(3))
			for _, event := range events {
				Expect(event.Type).To(Equal(realtime.EventDailyLogChanged))
				Expect(event.DailyLog).NotTo(BeNil())
			}
		})

		It("defaults a blank check-in time to now", func() {
			log, err := service.CheckIn(ctx, "c1", "2025-09-15", "")
			Expect(err).To(BeNil())
			Expect(log.ArrivalTime).NotTo(BeEmpty())
		})

		It("resets to a blank record under the same id", func() {
			service.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			log, err := service.ResetLog(ctx, "c1", "2025-09-15")

			Expect(err).To(BeNil())
			Expect(log.Id).To(Equal("c1_2025-09-15"))
			Expect(log.IsPresent).To(BeFalse())
		})
	})

	Context("entries", func() {

		entry := func(v interface{}) json.RawMessage {
			payload, err := json.Marshal(v)
			Expect(err).To(BeNil())
			return payload
		}

		It("adds a meal with a fresh id", func() {
			log, err := service.AddEntry(ctx, "c1", "2025-09-15", EntryMeals,
				entry(store.MealEntry{Time: "12:00", Type: "Lunch", Items: "Pasta", Amount: store.MealAmountAll}))

			Expect(err).To(BeNil())
			Expect(log.Meals).To(HaveLen(1))
			Expect(log.Meals[0].Id).NotTo(BeEmpty())
			Expect(log.Meals[0].Items).To(Equal("Pasta"))
		})

		It("defaults a missing entry time", func() {
			log, err := service.AddEntry(ctx, "c1", "2025-09-15", EntryDiapers,
				entry(store.DiaperPottyEntry{Type: store.DiaperTypeWet}))

			Expect(err).To(BeNil())
			Expect(log.Diapers[0].Time).NotTo(BeEmpty())
		})

		It("updates an entry in place, keeping its id", func() {
			log, _ := service.AddEntry(ctx, "c1", "2025-09-15", EntryMeals,
				entry(store.MealEntry{Time: "12:00", Items: "Pasta"}))
			mealId := log.Meals[0].Id

			log, err := service.UpdateEntry(ctx, "c1", "2025-09-15", EntryMeals, mealId,
				entry(store.MealEntry{Time: "12:15", Items: "Pasta and peas"}))

			Expect(err).To(BeNil())
			Expect(log.Meals).To(HaveLen(1))
			Expect(log.Meals[0].Id).To(Equal(mealId))
			Expect(log.Meals[0].Items).To(Equal("Pasta and peas"))
		})

		It("removes an entry", func() {
			log, _ := service.AddEntry(ctx, "c1", "2025-09-15", EntryIncidents,
				entry(store.IncidentEntry{Time: "10:00", Type: "Bump", Description: "minor"}))

			log, err := service.RemoveEntry(ctx, "c1", "2025-09-15", EntryIncidents, log.Incidents[0].Id)

			Expect(err).To(BeNil())
			Expect(log.Incidents).To(BeEmpty())
		})

		It("rejects an unknown kind", func() {
			_, err := service.AddEntry(ctx, "c1", "2025-09-15", "snacks", entry(store.MealEntry{}))
			Expect(errors.Cause(err)).To(Equal(ErrUnknownEntry))
		})

		It("errors for a missing entry id", func() {
			_, err := service.UpdateEntry(ctx, "c1", "2025-09-15", EntryMeals, "nope",
				entry(store.MealEntry{}))
			Expect(errors.Cause(err)).To(Equal(ErrEntryNotFound))
		})

		It("rejects an undecodable payload", func() {
			_, err := service.AddEntry(ctx, "c1", "2025-09-15", EntryMeals, json.RawMessage(`{"time":`))
			Expect(errors.Cause(err)).To(Equal(ErrBadEntry))
		})
	})

	Context("listing", func() {

		BeforeEach(func() {
			service.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			service.CheckIn(ctx, "c2", "2025-09-15", "08:30")
			service.CheckIn(ctx, "c1", "2025-09-16", "08:10")
		})

		It("filters by date", func() {
			logs, err := service.ListLogsByDate(ctx, "2025-09-15")
			Expect(err).To(BeNil())
			Expect(logs).To(HaveLen(2))
		})

		It("returns a child's history newest first", func() {
			logs, err := service.ListLogsByChild(ctx, "c1")
			Expect(err).To(BeNil())
			Expect(logs).To(HaveLen(2))
			Expect(logs[0].Date).To(Equal("2025-09-16"))
		})
	})

	Context("AttendanceForMonth", func() {

		BeforeEach(func() {
			service.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			service.CheckIn(ctx, "c1", "2025-09-16", "08:10")
			service.CheckIn(ctx, "c2", "2025-09-15", "08:30")
			service.GetOrCreateLog(ctx, "c2", "2025-09-16") // never checked in
			service.CheckIn(ctx, "c1", "2025-10-01", "08:00")
		})

		It("counts only present days inside the month", func() {
			summaries, err := service.AttendanceForMonth(ctx, "2025-09")

			Expect(err).To(BeNil())
			Expect(summaries).To(HaveLen(2))
			Expect(summaries[0].ChildId).To(Equal("c1"))
			Expect(summaries[0].DaysPresent).To(Equal(2))
			Expect(summaries[1].ChildId).To(Equal("c2"))
			Expect(summaries[1].DaysPresent).To(Equal(1))
		})

		It("rejects a malformed month", func() {
			_, err := service.AttendanceForMonth(ctx, "september")
			Expect(errors.Cause(err)).To(Equal(ErrBadMonth))
		})
	})

	Context("DeleteLog", func() {

		It("removes an existing log and signals the change", func() {
			log, _ := service.GetOrCreateLog(ctx, "c1", "2025-09-15")
			events = nil

			Expect(service.DeleteLog(ctx, log.Id)).To(Succeed())
			logs, _ := service.ListLogsByDate(ctx, "2025-09-15")
			Expect(logs).To(BeEmpty())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal(realtime.EventDataChanged))
		})

		It("errors for an unknown id", func() {
			Expect(errors.Cause(service.DeleteLog(ctx, "nope"))).To(Equal(ErrLogNotFound))
		})
	})
})
