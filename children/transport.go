package children

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var (
	ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")
)

type ChildTransport struct {
	Id               string   `json:"id"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Nickname         string   `json:"nickname,omitempty"`
	BirthDate        string   `json:"dob"`
	Classroom        string   `json:"classroom,omitempty"`
	Allergies        string   `json:"allergies,omitempty"`
	DietaryNotes     string   `json:"dietaryNotes,omitempty"`
	NapNotes         string   `json:"napNotes,omitempty"`
	EmergencyNotes   string   `json:"emergencyNotes,omitempty"`
	Active           *bool    `json:"active,omitempty"`
	ParentIds        []string `json:"parentIds"`
	DailyMedications []string `json:"dailyMedications,omitempty"`
}

func transportFromChild(child store.Child) ChildTransport {
	active := child.Active
	return ChildTransport{
		Id:               child.Id,
		FirstName:        child.FirstName,
		LastName:         child.LastName,
		Nickname:         child.Nickname,
		BirthDate:        child.BirthDate,
		Classroom:        child.Classroom,
		Allergies:        child.Allergies,
		DietaryNotes:     child.DietaryNotes,
		NapNotes:         child.NapNotes,
		EmergencyNotes:   child.EmergencyNotes,
		Active:           &active,
		ParentIds:        child.ParentIds,
		DailyMedications: child.DailyMedications,
	}
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Add(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEndpoint(h.Service),
		decodeChildTransport,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		decodeGetOrDeleteChildTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateChildRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeGetOrDeleteChildTransport,
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

func makeAddEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ChildTransport)
		child, err := svc.AddChild(ctx, req)
		if err != nil {
			return nil, err
		}
		return transportFromChild(child), nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ChildTransport)
		child, err := svc.GetChild(ctx, req.Id)
		if err != nil {
			return nil, err
		}
		return transportFromChild(child), nil
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ChildTransport)
		child, err := svc.UpdateChild(ctx, req)
		if err != nil {
			return nil, err
		}
		return transportFromChild(child), nil
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ChildTransport)
		if err := svc.DeleteChild(ctx, req.Id); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		children, err := svc.ListChildren(ctx)
		if err != nil {
			return nil, err
		}
		all := []ChildTransport{}
		for _, child := range children {
			all = append(all, transportFromChild(child))
		}
		return all, nil
	}
}

func decodeChildTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request ChildTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeUpdateChildRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["childId"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request ChildTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.Id = id
	return request, nil
}

func decodeGetOrDeleteChildTransport(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["childId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return ChildTransport{Id: id}, nil
}

func ignorePayload(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	code := http.StatusInternalServerError
	switch errors.Cause(err) {
	case ErrNoName, ErrEmptyChild:
		code = http.StatusBadRequest
	case ErrChildNotFound:
		code = http.StatusNotFound
	}
	shared.WriteError(w, code, err)
}
