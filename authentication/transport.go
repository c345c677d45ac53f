package authentication

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Kaptaan1992/honeybees-daycare/shared"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"
)

type LoginTransport struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Login(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeLoginEndpoint(h.Service),
		decodeLoginTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Logout(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeLogoutEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse204,
		opts...,
	)
}

func (h *HandlerFactory) Session(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSessionEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeLoginEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(LoginTransport)
		if err := svc.Login(ctx, req.Username, req.Password); err != nil {
			return nil, err
		}
		return sessionResponse{Authenticated: true}, nil
	}
}

func makeLogoutEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		if err := svc.Logout(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeSessionEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return sessionResponse{Authenticated: svc.IsAuthenticated(ctx)}, nil
	}
}

func decodeLoginTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request LoginTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func ignorePayload(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	code := http.StatusInternalServerError
	if errors.Cause(err) == ErrBadCredentials {
		code = http.StatusUnauthorized
	}
	shared.WriteError(w, code, err)
}
