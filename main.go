package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Kaptaan1992/honeybees-daycare/authentication"
	"github.com/Kaptaan1992/honeybees-daycare/children"
	"github.com/Kaptaan1992/honeybees-daycare/holidays"
	"github.com/Kaptaan1992/honeybees-daycare/logs"
	"github.com/Kaptaan1992/honeybees-daycare/mailer"
	"github.com/Kaptaan1992/honeybees-daycare/parents"
	"github.com/Kaptaan1992/honeybees-daycare/realtime"
	"github.com/Kaptaan1992/honeybees-daycare/reports"
	"github.com/Kaptaan1992/honeybees-daycare/settings"
	. "github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"
	"github.com/Kaptaan1992/honeybees-daycare/summary"

	"github.com/facebookgo/inject"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/pkg/errors"
)

var (
	ctx             = context.Background()
	logger          = NewLogger("honeybees")
	config          *AppConfig
	db              *gorm.DB
	stringGenerator = &StringGenerator{}

	childService    = &children.ChildService{}
	parentService   = &parents.ParentService{}
	holidayService  = &holidays.HolidayService{}
	logService      = &logs.LogService{}
	settingsService = &settings.SettingsService{}
	reportService   = &reports.ReportService{}
	authService     = &authentication.AuthService{}

	childrenHandlerFactory = &children.HandlerFactory{}
	parentsHandlerFactory  = &parents.HandlerFactory{}
	holidaysHandlerFactory = &holidays.HandlerFactory{}
	logsHandlerFactory     = &logs.HandlerFactory{}
	settingsHandlerFactory = &settings.HandlerFactory{}
	reportsHandlerFactory  = &reports.HandlerFactory{}
	authHandlerFactory     = &authentication.HandlerFactory{}

	localStore      = &store.LocalStore{}
	appStore        = &store.Store{}
	bus             = &realtime.Bus{}
	realtimeChannel = &realtime.Channel{}
	relay           = mailer.NewRelay()
	summaryClient   *summary.Client
	authGuard       = &authentication.Guard{}
)

func init() {
	checkErrAndExit(initAppConfiguration())
	checkErrAndExit(initSqliteConnection())
	checkErrAndExit(initApplicationGraph())
	checkErrAndExit(localStore.Migrate())
}

func initAppConfiguration() (err error) {
	config, err = InitAppConfiguration()
	return
}

func initSqliteConnection() (err error) {
	db, err = gorm.Open("sqlite3", config.LocalDbPath)
	if err != nil {
		return
	}

	db.LogMode(true)
	db.SetLogger(logger)
	return
}

func initApplicationGraph() error {
	summaryClient = summary.New(config.SummaryApiKey)
	realtimeChannel.HeartbeatInterval = time.Duration(config.RealtimeHeartbeatSeconds) * time.Second

	g := inject.Graph{}
	g.Provide(
		&inject.Object{Value: config},
		&inject.Object{Value: childService},
		&inject.Object{Value: parentService},
		&inject.Object{Value: holidayService},
		&inject.Object{Value: logService},
		&inject.Object{Value: settingsService},
		&inject.Object{Value: reportService},
		&inject.Object{Value: authService},
		&inject.Object{Value: childrenHandlerFactory},
		&inject.Object{Value: parentsHandlerFactory},
		&inject.Object{Value: holidaysHandlerFactory},
		&inject.Object{Value: logsHandlerFactory},
		&inject.Object{Value: settingsHandlerFactory},
		&inject.Object{Value: reportsHandlerFactory},
		&inject.Object{Value: authHandlerFactory},
		&inject.Object{Value: db},
		&inject.Object{Value: stringGenerator},
		&inject.Object{Value: localStore},
		&inject.Object{Value: appStore},
		&inject.Object{Value: bus},
		&inject.Object{Value: realtimeChannel},
		&inject.Object{Value: relay},
		&inject.Object{Value: summaryClient},
		&inject.Object{Value: authGuard},
		&inject.Object{Value: logger},
	)
	if err := g.Populate(); err != nil {
		return errors.Wrap(err, "failed to populate")
	}
	return nil
}

func main() {
	// push local data to a fresh mirror, then open the change stream
	appStore.SeedCloud(ctx)
	realtimeChannel.EnsureConnected(ctx)
	watchdog, err := realtimeChannel.Watch(ctx, config.WatchdogSpec)
	checkErrAndExit(err)
	defer watchdog.Stop()

	startHttpServer(ctx)
}

func startHttpServer(ctx context.Context) {
	childrenOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(children.EncodeError),
	}

	parentsOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(parents.EncodeError),
	}

	holidaysOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(holidays.EncodeError),
	}

	logsOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(logs.EncodeError),
	}

	settingsOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(settings.EncodeError),
	}

	reportsOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(reports.EncodeError),
	}

	authOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(authentication.EncodeError),
	}

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	apiRouterV1 := router.PathPrefix("/api/v1").Subrouter()

	apiRouterV1.Handle("/login", authHandlerFactory.Login(authOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/logout", authHandlerFactory.Logout(authOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/session", authHandlerFactory.Session(authOpts)).Methods(http.MethodGet)

	apiRouterV1.Handle("/children", childrenHandlerFactory.Add(childrenOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/children", childrenHandlerFactory.List(childrenOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/children/{childId}", childrenHandlerFactory.Get(childrenOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/children/{childId}", childrenHandlerFactory.Update(childrenOpts)).Methods(http.MethodPatch)
	apiRouterV1.Handle("/children/{childId}", childrenHandlerFactory.Delete(childrenOpts)).Methods(http.MethodDelete)

	apiRouterV1.Handle("/parents", parentsHandlerFactory.Add(parentsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/parents", parentsHandlerFactory.List(parentsOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/parents/{parentId}", parentsHandlerFactory.Get(parentsOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/parents/{parentId}", parentsHandlerFactory.Update(parentsOpts)).Methods(http.MethodPatch)
	apiRouterV1.Handle("/parents/{parentId}", parentsHandlerFactory.Delete(parentsOpts)).Methods(http.MethodDelete)

	apiRouterV1.Handle("/holidays", holidaysHandlerFactory.Add(holidaysOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/holidays", holidaysHandlerFactory.List(holidaysOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/holidays/upcoming", holidaysHandlerFactory.Upcoming(holidaysOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/holidays/{holidayId}", holidaysHandlerFactory.Update(holidaysOpts)).Methods(http.MethodPatch)
	apiRouterV1.Handle("/holidays/{holidayId}", holidaysHandlerFactory.Delete(holidaysOpts)).Methods(http.MethodDelete)

	apiRouterV1.Handle("/daily-logs", logsHandlerFactory.GetOrCreate(logsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/daily-logs", logsHandlerFactory.ListByDate(logsOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/daily-logs/{logId}", logsHandlerFactory.Delete(logsOpts)).Methods(http.MethodDelete)
	apiRouterV1.Handle("/children/{childId}/daily-logs", logsHandlerFactory.ListByChild(logsOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}", logsHandlerFactory.Update(logsOpts)).Methods(http.MethodPatch)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/check-in", logsHandlerFactory.CheckIn(logsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/check-out", logsHandlerFactory.CheckOut(logsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/undo-check-out", logsHandlerFactory.UndoCheckOut(logsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/reset", logsHandlerFactory.Reset(logsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/entries/{kind}", logsHandlerFactory.AddEntry(logsOpts)).Methods(http.MethodPost)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/entries/{kind}/{entryId}", logsHandlerFactory.UpdateEntry(logsOpts)).Methods(http.MethodPut)
	apiRouterV1.Handle("/children/{childId}/daily-logs/{date}/entries/{kind}/{entryId}", logsHandlerFactory.RemoveEntry(logsOpts)).Methods(http.MethodDelete)
	apiRouterV1.Handle("/attendance/{month}", logsHandlerFactory.Attendance(logsOpts)).Methods(http.MethodGet)

	apiRouterV1.Handle("/settings", settingsHandlerFactory.Get(settingsOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/settings", settingsHandlerFactory.Update(settingsOpts)).Methods(http.MethodPatch)
	apiRouterV1.Handle("/settings/sync", settingsHandlerFactory.Sync(settingsOpts)).Methods(http.MethodPost)

	apiRouterV1.Handle("/reports/{childId}/{date}/preview", reportsHandlerFactory.Preview(reportsOpts)).Methods(http.MethodGet)
	apiRouterV1.Handle("/reports/send", reportsHandlerFactory.Send(reportsOpts)).Methods(http.MethodPost)

	logger.Info(ctx, "listening", "addr", config.ListenAddr)
	checkErrAndExit(http.ListenAndServe(config.ListenAddr,
		logger.RequestLoggerMiddleware(
			authGuard.Middleware(router),
		),
	))
}

func checkErrAndExit(err error) {
	if err == nil {
		return
	}
	fmt.Println(err.Error())
	os.Exit(1)
}
