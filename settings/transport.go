package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"
)

// SettingsTransport is a patch document: only fields present in the request
// body are applied.
type SettingsTransport struct {
	DaycareName           *string `json:"daycareName,omitempty"`
	FromEmail             *string `json:"fromEmail,omitempty"`
	EmailSignature        *string `json:"emailSignature,omitempty"`
	TestEmail             *string `json:"testEmail,omitempty"`
	AdminPassword         *string `json:"adminPassword,omitempty"`
	AutoSendTime          *string `json:"autoSendTime,omitempty"`
	SendCopyToSelfDefault *bool   `json:"sendCopyToSelfDefault,omitempty"`
	EmailjsServiceId      *string `json:"emailjsServiceId,omitempty"`
	EmailjsTemplateId     *string `json:"emailjsTemplateId,omitempty"`
	EmailjsPublicKey      *string `json:"emailjsPublicKey,omitempty"`
	CloudUrl              *string `json:"cloudUrl,omitempty"`
	CloudAnonKey          *string `json:"cloudAnonKey,omitempty"`
}

// scrub hides the admin credential from API responses.
func scrub(settings store.Settings) store.Settings {
	settings.AdminPassword = ""
	return settings
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeSettingsTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Sync(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSyncEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		settings, err := svc.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		return scrub(settings), nil
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(SettingsTransport)
		settings, err := svc.UpdateSettings(ctx, req)
		if err != nil {
			return nil, err
		}
		return scrub(settings), nil
	}
}

func makeSyncEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		settings, err := svc.SyncFromCloud(ctx)
		if err != nil {
			return nil, err
		}
		return scrub(settings), nil
	}
}

func decodeSettingsTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request SettingsTransport
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
	if errors.Cause(err) == ErrEmptyDaycareName {
		code = http.StatusBadRequest
	}
	shared.WriteError(w, code, err)
}
