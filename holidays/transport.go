package holidays

import (
	"context"
	"encoding/json"
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

type HolidayTransport struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Type  string `json:"type,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Add(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEndpoint(h.Service),
		decodeHolidayTransport,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateHolidayRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeDeleteHolidayTransport,
		shared.EncodeResponse204,
		opts...,
	)
}

func (h *HandlerFactory) List(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Upcoming(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpcomingEndpoint(h.Service),
		decodeUpcomingRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeAddEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(HolidayTransport)
		return svc.AddHoliday(ctx, req)
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(HolidayTransport)
		return svc.UpdateHoliday(ctx, req)
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(HolidayTransport)
		if err := svc.DeleteHoliday(ctx, req.Id); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return svc.ListHolidays(ctx)
	}
}

type upcomingRequest struct {
	From string
}

func makeUpcomingEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(upcomingRequest)
		return svc.ListUpcoming(ctx, req.From)
	}
}

func decodeHolidayTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request HolidayTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeUpdateHolidayRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["holidayId"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request HolidayTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.Id = id
	return request, nil
}

func decodeDeleteHolidayTransport(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["holidayId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return HolidayTransport{Id: id}, nil
}

func decodeUpcomingRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return upcomingRequest{From: r.URL.Query().Get("from")}, nil
}

func ignorePayload(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	code := http.StatusInternalServerError
	switch errors.Cause(err) {
	case ErrEmptyHoliday, ErrNoName, ErrBadDate:
		code = http.StatusBadRequest
	case ErrHolidayNotFound:
		code = http.StatusNotFound
	}
	shared.WriteError(w, code, err)
}
