package reports

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

type SendTransport struct {
	ChildId    string `json:"childId"`
	Date       string `json:"date"`
	TestSend   bool   `json:"testSend,omitempty"`
	CopyToSelf *bool  `json:"copyToSelf,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Preview(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makePreviewEndpoint(h.Service),
		decodePreviewRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Send(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSendEndpoint(h.Service),
		decodeSendTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

type previewRequest struct {
	ChildId string
	Date    string
}

func makePreviewEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(previewRequest)
		return svc.PreviewReport(ctx, req.ChildId, req.Date)
	}
}

func makeSendEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(SendTransport)
		return svc.SendReport(ctx, SendRequest{
			ChildId:    req.ChildId,
			Date:       req.Date,
			TestSend:   req.TestSend,
			CopyToSelf: req.CopyToSelf,
		})
	}
}

func decodePreviewRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	childId, ok := vars["childId"]
	if !ok {
		return nil, ErrBadRouting
	}
	date, ok := vars["date"]
	if !ok {
		return nil, ErrBadRouting
	}
	return previewRequest{ChildId: childId, Date: date}, nil
}

func decodeSendTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request SendTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	code := http.StatusInternalServerError
	switch errors.Cause(err) {
	case ErrNoRecipients:
		code = http.StatusBadRequest
	case ErrChildNotFound, ErrLogNotStarted:
		code = http.StatusNotFound
	case ErrDispatchFailed:
		code = http.StatusBadGateway
	}
	shared.WriteError(w, code, err)
}
