package logs

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/Kaptaan1992/honeybees-daycare/shared"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var (
	ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")
)

// LogTransport carries the scalar fields of a daily log. Pointer fields
// distinguish "leave unchanged" from "set to empty".
type LogTransport struct {
	Id             string  `json:"id,omitempty"`
	ChildId        string  `json:"childId"`
	Date           string  `json:"date"`
	ArrivalTime    string  `json:"arrivalTime,omitempty"`
	DepartureTime  string  `json:"departureTime,omitempty"`
	OverallMood    string  `json:"overallMood,omitempty"`
	TeacherNotes   *string `json:"teacherNotes,omitempty"`
	ActivityNotes  *string `json:"activityNotes,omitempty"`
	SuppliesNeeded *string `json:"suppliesNeeded,omitempty"`
	IsPresent      *bool   `json:"isPresent,omitempty"`
	IncludeTrends  *bool   `json:"includeTrends,omitempty"`
}

type entryRequest struct {
	ChildId string
	Date    string
	Kind    string
	EntryId string
	Payload json.RawMessage
}

type lifecycleRequest struct {
	ChildId string `json:"childId"`
	Date    string `json:"date"`
	Time    string `json:"time,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) GetOrCreate(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetOrCreateEndpoint(h.Service),
		decodeChildDateRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) ListByDate(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListByDateEndpoint(h.Service),
		decodeListByDateRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) ListByChild(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListByChildEndpoint(h.Service),
		decodeListByChildRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateLogRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeDeleteLogRequest,
		shared.EncodeResponse204,
		opts...,
	)
}

func (h *HandlerFactory) CheckIn(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeCheckInEndpoint(h.Service),
		decodeLifecycleRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) CheckOut(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeCheckOutEndpoint(h.Service),
		decodeLifecycleRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) UndoCheckOut(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUndoCheckOutEndpoint(h.Service),
		decodeLifecycleRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Reset(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeResetEndpoint(h.Service),
		decodeLifecycleRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) AddEntry(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEntryEndpoint(h.Service),
		decodeEntryRequest,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) UpdateEntry(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEntryEndpoint(h.Service),
		decodeEntryRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) RemoveEntry(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeRemoveEntryEndpoint(h.Service),
		decodeEntryRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Attendance(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAttendanceEndpoint(h.Service),
		decodeAttendanceRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeGetOrCreateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(lifecycleRequest)
		return svc.GetOrCreateLog(ctx, req.ChildId, req.Date)
	}
}

func makeListByDateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		date := request.(string)
		return svc.ListLogsByDate(ctx, date)
	}
}

func makeListByChildEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		childId := request.(string)
		return svc.ListLogsByChild(ctx, childId)
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(LogTransport)
		return svc.UpdateLog(ctx, req)
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		logId := request.(string)
		if err := svc.DeleteLog(ctx, logId); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeCheckInEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(lifecycleRequest)
		return svc.CheckIn(ctx, req.ChildId, req.Date, req.Time)
	}
}

func makeCheckOutEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(lifecycleRequest)
		return svc.CheckOut(ctx, req.ChildId, req.Date, req.Time)
	}
}

func makeUndoCheckOutEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(lifecycleRequest)
		return svc.UndoCheckOut(ctx, req.ChildId, req.Date)
	}
}

func makeResetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(lifecycleRequest)
		return svc.ResetLog(ctx, req.ChildId, req.Date)
	}
}

func makeAddEntryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(entryRequest)
		return svc.AddEntry(ctx, req.ChildId, req.Date, req.Kind, req.Payload)
	}
}

func makeUpdateEntryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(entryRequest)
		return svc.UpdateEntry(ctx, req.ChildId, req.Date, req.Kind, req.EntryId, req.Payload)
	}
}

func makeRemoveEntryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(entryRequest)
		return svc.RemoveEntry(ctx, req.ChildId, req.Date, req.Kind, req.EntryId)
	}
}

func makeAttendanceEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		month := request.(string)
		return svc.AttendanceForMonth(ctx, month)
	}
}

func decodeChildDateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var request lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeListByDateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return r.URL.Query().Get("date"), nil
}

func decodeListByChildRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	childId, ok := vars["childId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return childId, nil
}

func decodeUpdateLogRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	childId, ok := vars["childId"]
	if !ok {
		return nil, ErrBadRouting
	}
	date, ok := vars["date"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request LogTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.ChildId = childId
	request.Date = date
	return request, nil
}

func decodeDeleteLogRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	logId, ok := vars["logId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return logId, nil
}

func decodeLifecycleRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	childId, ok := vars["childId"]
	if !ok {
		return nil, ErrBadRouting
	}
	date, ok := vars["date"]
	if !ok {
		return nil, ErrBadRouting
	}
	request := lifecycleRequest{ChildId: childId, Date: date}
	if r.Body != nil {
		// time is optional; an empty body means "now"
		json.NewDecoder(r.Body).Decode(&request)
		request.ChildId = childId
		request.Date = date
	}
	return request, nil
}

func decodeEntryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	request := entryRequest{
		ChildId: vars["childId"],
		Date:    vars["date"],
		Kind:    vars["kind"],
		EntryId: vars["entryId"],
	}
	if request.ChildId == "" || request.Date == "" || request.Kind == "" {
		return nil, ErrBadRouting
	}
	if r.Method != http.MethodDelete {
		payload, err := ioutil.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		request.Payload = json.RawMessage(payload)
	}
	return request, nil
}

func decodeAttendanceRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	month, ok := vars["month"]
	if !ok {
		return nil, ErrBadRouting
	}
	return month, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	code := http.StatusInternalServerError
	switch errors.Cause(err) {
	case ErrEmptyChildId, ErrUnknownEntry, ErrBadEntry, ErrBadMonth:
		code = http.StatusBadRequest
	case ErrEntryNotFound, ErrLogNotFound:
		code = http.StatusNotFound
	}
	shared.WriteError(w, code, err)
}
