package logs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/Kaptaan1992/honeybees-daycare/logs"

	"github.com/Kaptaan1992/honeybees-daycare/realtime"
	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"
	"github.com/Kaptaan1992/honeybees-daycare/store/mocks"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transport", func() {

	var (
		router   *mux.Router
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		appStore := &store.Store{
			Local:           mocks.NewMemoryLocal(),
			Logger:          shared.NewLogger("logs-transport-test"),
			StringGenerator: &shared.StringGenerator{},
			CloudFactory: func(url, key string) (store.Mirror, error) {
				return nil, store.ErrCloudDisabled
			},
		}
		factory := &HandlerFactory{Service: &LogService{
			Store:           appStore,
			Bus:             &realtime.Bus{},
			StringGenerator: &shared.StringGenerator{},
		}}

		opts := []kithttp.ServerOption{
			kithttp.ServerErrorEncoder(EncodeError),
		}

		router = mux.NewRouter()
		router.Handle("/daily-logs", factory.GetOrCreate(opts)).Methods(http.MethodPost)
		router.Handle("/daily-logs", factory.ListByDate(opts)).Methods(http.MethodGet)
		router.Handle("/daily-logs/{logId}", factory.Delete(opts)).Methods(http.MethodDelete)
		router.Handle("/children/{childId}/daily-logs/{date}/check-in", factory.CheckIn(opts)).Methods(http.MethodPost)
		router.Handle("/children/{childId}/daily-logs/{date}/entries/{kind}", factory.AddEntry(opts)).Methods(http.MethodPost)
		router.Handle("/children/{childId}/daily-logs/{date}/entries/{kind}/{entryId}", factory.RemoveEntry(opts)).Methods(http.MethodDelete)
		router.Handle("/attendance/{month}", factory.Attendance(opts)).Methods(http.MethodGet)

		recorder = httptest.NewRecorder()
	})

	perform := func(method, target, body string) {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		router.ServeHTTP(recorder, req)
	}

	decodeLog := func() store.DailyLog {
		log := store.DailyLog{}
		Expect(json.Unmarshal(recorder.Body.Bytes(), &log)).To(Succeed())
		return log
	}

	decodeErrorBody := func() string {
		envelope := map[string]string{}
		Expect(json.Unmarshal(recorder.Body.Bytes(), &envelope)).To(Succeed())
		return envelope["error"]
	}

	Context("POST /daily-logs", func() {

		It("creates the log with the deterministic id", func() {
			perform(http.MethodPost, "/daily-logs", `{"childId":"c1","date":"2025-09-15"}`)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(decodeLog().Id).To(Equal("c1_2025-09-15"))
		})

		It("rejects a missing child id with the error envelope", func() {
			perform(http.MethodPost, "/daily-logs", `{"date":"2025-09-15"}`)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeErrorBody()).To(Equal("childId cannot be empty"))
		})
	})

	Context("POST check-in", func() {

		It("tolerates an empty body and defaults the time", func() {
			perform(http.MethodPost, "/children/c1/daily-logs/2025-09-15/check-in", "")

			Expect(recorder.Code).To(Equal(http.StatusOK))
			log := decodeLog()
			Expect(log.IsPresent).To(BeTrue())
			Expect(log.ArrivalTime).NotTo(BeEmpty())
		})

		It("uses the time from the body when given", func() {
			perform(http.MethodPost, "/children/c1/daily-logs/2025-09-15/check-in", `{"time":"08:05"}`)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(decodeLog().ArrivalTime).To(Equal("08:05"))
		})
	})

	Context("entry endpoints", func() {

		It("appends a meal and responds 201", func() {
			perform(http.MethodPost, "/children/c1/daily-logs/2025-09-15/entries/meals", `{"time":"12:00","type":"Lunch","items":"Pasta","amount":"All"}`)

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			log := decodeLog()
			Expect(log.Meals).To(HaveLen(1))
			Expect(log.Meals[0].Id).NotTo(BeEmpty())
			Expect(log.Meals[0].Items).To(Equal("Pasta"))
		})

		It("rejects an unknown entry kind", func() {
			perform(http.MethodPost, "/children/c1/daily-logs/2025-09-15/entries/snoozes", `{"time":"12:00"}`)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeErrorBody()).To(Equal("unknown entry kind"))
		})

		It("responds 404 when removing an entry that does not exist", func() {
			perform(http.MethodPost, "/daily-logs", `{"childId":"c1","date":"2025-09-15"}`)
			recorder = httptest.NewRecorder()

			perform(http.MethodDelete, "/children/c1/daily-logs/2025-09-15/entries/meals/nope", "")

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects an undecodable payload", func() {
			perform(http.MethodPost, "/children/c1/daily-logs/2025-09-15/entries/meals", `{"time":`)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("DELETE /daily-logs/{logId}", func() {

		It("responds 404 for an unknown log", func() {
			perform(http.MethodDelete, "/daily-logs/nope_2025-09-15", "")

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})

		It("responds 204 once the log is gone", func() {
			perform(http.MethodPost, "/daily-logs", `{"childId":"c1","date":"2025-09-15"}`)
			recorder = httptest.NewRecorder()

			perform(http.MethodDelete, "/daily-logs/c1_2025-09-15", "")

			Expect(recorder.Code).To(Equal(http.StatusNoContent))
		})
	})

	Context("GET /attendance/{month}", func() {

		It("rejects a month that is not YYYY-MM", func() {
			perform(http.MethodGet, "/attendance/september", "")

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeErrorBody()).To(Equal("month must look like YYYY-MM"))
		})
	})
})
