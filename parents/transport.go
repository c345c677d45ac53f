package parents

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

type ParentTransport struct {
	Id                string `json:"id"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	Relationship      string `json:"relationship,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	ReceivesEmail     *bool  `json:"receivesEmail,omitempty"`
}

func transportFromParent(parent store.Parent) ParentTransport {
	receives := parent.ReceivesEmail
	return ParentTransport{
		Id:                parent.Id,
		FullName:          parent.FullName,
		Email:             parent.Email,
		Phone:             parent.Phone,
		Relationship:      string(parent.Relationship),
		PreferredLanguage: string(parent.PreferredLanguage),
		ReceivesEmail:     &receives,
	}
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Add(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEndpoint(h.Service),
		decodeParentTransport,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		decodeGetOrDeleteParentTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateParentRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeGetOrDeleteParentTransport,
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
		req := request.(ParentTransport)
		parent, err := svc.AddParent(ctx, req)
		if err != nil {
			return nil, err
		}
		return transportFromParent(parent), nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ParentTransport)
		parent, err := svc.GetParent(ctx, req.Id)
		if err != nil {
			return nil, err
		}
		return transportFromParent(parent), nil
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ParentTransport)
		parent, err := svc.UpdateParent(ctx, req)
		if err != nil {
			return nil, err
		}
		return transportFromParent(parent), nil
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ParentTransport)
		if err := svc.DeleteParent(ctx, req.Id); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		parents, err := svc.ListParents(ctx)
		if err != nil {
			return nil, err
		}
		all := []ParentTransport{}
		for _, parent := range parents {
			all = append(all, transportFromParent(parent))
		}
		return all, nil
	}
}

func decodeParentTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request ParentTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeUpdateParentRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["parentId"]
	if !ok {
		return nil, ErrBadRouting
	}
	var request ParentTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.Id = id
	return request, nil
}

func decodeGetOrDeleteParentTransport(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["parentId"]
	if !ok {
		return nil, ErrBadRouting
	}
	return ParentTransport{Id: id}, nil
}

func ignorePayload(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	code := http.StatusInternalServerError
	switch errors.Cause(err) {
	case ErrEmptyParent, ErrInvalidEmail:
		code = http.StatusBadRequest
	case ErrParentNotFound:
		code = http.StatusNotFound
	}
	shared.WriteError(w, code, err)
}
