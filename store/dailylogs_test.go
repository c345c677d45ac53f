package store_test

import (
	"context"
	"encoding/json"

	. "github.com/Kaptaan1992/honeybees-daycare/store"
	"github.com/Kaptaan1992/honeybees-daycare/store/mocks"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("DailyLogs", func() {

	var (
		ctx      = context.Background()
		appStore *Store
		local    *mocks.MemoryLocal
	)

	BeforeEach(func() {
		local = mocks.NewMemoryLocal()
		appStore = &Store{
			Local:           local,
			Logger:          shared.NewLogger("store-test"),
			StringGenerator: &shared.StringGenerator{},
			CloudFactory: func(url, key string) (Mirror, error) {
				return nil, ErrCloudDisabled
			},
		}
	})

	Context("GetOrCreateDailyLog", func() {

		It("creates a blank log with a deterministic id on first access", func() {
			log := appStore.GetOrCreateDailyLog(ctx, "c1", "2025-09-15")

			Expect(log.Id).To(Equal("c1_2025-09-15"))
			Expect(log.Status).To(Equal(StatusInProgress))
			Expect(log.IsPresent).To(BeFalse())
			Expect(log.ArrivalTime).To(Equal("08:00"))
			Expect(log.DepartureTime).To(Equal("17:30"))
			Expect(log.OverallMood).To(Equal(MoodGreat))
			Expect(log.Meals).To(BeEmpty())
			Expect(log.Incidents).To(BeEmpty())
		})

		It("returns the same record on repeated calls", func() {
			first := appStore.GetOrCreateDailyLog(ctx, "c1", "2025-09-15")
			second := appStore.GetOrCreateDailyLog(ctx, "c1", "2025-09-15")

			Expect(second.Id).To(Equal(first.Id))
			Expect(appStore.GetDailyLogs(ctx)).To(HaveLen(1))
		})

		It("converges when called concurrently for the same child and day", func() {
			done := make(chan string, 8)
			for i := 0; i < 8; i++ {
				go func() {
					done <- appStore.GetOrCreateDailyLog(ctx, "c1", "2025-09-15").Id
				}()
			}
			for i := 0; i < 8; i++ {
				Expect(<-done).To(Equal("c1_2025-09-15"))
			}
			Expect(appStore.GetDailyLogs(ctx)).To(HaveLen(1))
		})
	})

	Context("attendance lifecycle", func() {

		It("walks a day through check-in, check-out and undo", func() {
			log := appStore.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			Expect(log.IsPresent).To(BeTrue())
			Expect(log.ArrivalTime).To(Equal("08:05"))
			Expect(log.Status).To(Equal(StatusInProgress))

			log = appStore.CheckOut(ctx, "c1", "2025-09-15", "17:02")
			Expect(log.DepartureTime).To(Equal("17:02"))
			Expect(log.Status).To(Equal(StatusCompleted))

			log = appStore.UndoCheckOut(ctx, "c1", "2025-09-15")
			Expect(log.Status).To(Equal(StatusInProgress))
			Expect(log.DepartureTime).To(Equal("17:02"))
			Expect(log.IsPresent).To(BeTrue())
		})

		It("keeps captured data through an undo", func() {
			log := appStore.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			log.Meals = append(log.Meals, MealEntry{Id: "m1", Time: "12:00", Type: "Lunch", Items: "Pasta", Amount: MealAmountAll})
			appStore.UpdateDailyLog(ctx, log)

			appStore.CheckOut(ctx, "c1", "2025-09-15", "17:02")
			log = appStore.UndoCheckOut(ctx, "c1", "2025-09-15")

			Expect(log.Meals).To(HaveLen(1))
		})
	})

	Context("ResetDailyLog", func() {

		It("blanks the record but keeps its id", func() {
			log := appStore.CheckIn(ctx, "c1", "2025-09-15", "08:05")
			log.Meals = append(log.Meals, MealEntry{Id: "m1", Items: "Pasta"})
			log.TeacherNotes = "busy day"
			appStore.UpdateDailyLog(ctx, log)

			reset := appStore.ResetDailyLog(ctx, "c1", "2025-09-15")

			Expect(reset.Id).To(Equal("c1_2025-09-15"))
			Expect(reset.Meals).To(BeEmpty())
			Expect(reset.TeacherNotes).To(BeEmpty())
			Expect(reset.IsPresent).To(BeFalse())
			Expect(reset.Status).To(Equal(StatusInProgress))
			Expect(appStore.GetDailyLogs(ctx)).To(HaveLen(1))
		})
	})

	Context("MarkLogSent", func() {

		It("transitions an existing log to Sent", func() {
			appStore.CheckOut(ctx, "c1", "2025-09-15", "17:02")

			Expect(appStore.MarkLogSent(ctx, "c1_2025-09-15")).To(Succeed())
			Expect(appStore.GetDailyLogs(ctx)[0].Status).To(Equal(StatusSent))
		})

		It("errors for an unknown log id", func() {
			err := appStore.MarkLogSent(ctx, "nope")
			Expect(errors.Cause(err)).To(Equal(ErrDailyLogNotFound))
		})
	})

	Context("normalization of legacy records", func() {

		It("backfills nil sub-collections on read", func() {
			legacy, _ := json.Marshal([]DailyLog{{Id: "c1_2025-09-15", ChildId: "c1", Date: "2025-09-15"}})
			Expect(local.Set(CollectionDailyLogs, legacy)).To(Succeed())

			log := appStore.GetOrCreateDailyLog(ctx, "c1", "2025-09-15")

			Expect(log.Meals).NotTo(BeNil())
			Expect(log.Medications).NotTo(BeNil())
			Expect(log.Status).To(Equal(StatusInProgress))
		})
	})

	Context("MergeRemoteDailyLog", func() {

		It("folds a cloud row into the local collection without a cloud write", func() {
			appStore.CheckIn(ctx, "c1", "2025-09-15", "08:05")

			remote := appStore.GetOrCreateDailyLog(ctx, "c1", "2025-09-15")
			remote.TeacherNotes = "from another device"
			merged := appStore.MergeRemoteDailyLog(remote)

			Expect(merged.TeacherNotes).To(Equal("from another device"))
			logs := appStore.GetDailyLogs(ctx)
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].TeacherNotes).To(Equal("from another device"))
		})
	})
})
