package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const DefaultRelayUrl = "https://api.emailjs.com/api/v1.0/email/send"

var (
	ErrRelayNotConfigured = errors.New("email relay is not configured")
)

// RelayConfig is the transactional-email account bound in Settings.
type RelayConfig struct {
	ServiceId  string
	TemplateId string
	PublicKey  string
}

func (c RelayConfig) IsConfigured() bool {
	return c.ServiceId != "" && c.TemplateId != "" && c.PublicKey != ""
}

// TemplateParams are the named variables the relay template expects.
type TemplateParams struct {
	ToEmail     string `json:"to_email"`
	ChildName   string `json:"child_name"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	HtmlMessage string `json:"html_message"`
	DaycareName string `json:"daycare_name"`
}

type relayRequest struct {
	ServiceId      string         `json:"service_id"`
	TemplateId     string         `json:"template_id"`
	UserId         string         `json:"user_id"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Relay posts reports through the transactional-email API. Any failure here
// is recoverable: the caller falls back to the local mail client.
type Relay struct {
	// Url overrides the relay endpoint, for tests.
	Url string

	httpClient *http.Client
}

func NewRelay() *Relay {
	return &Relay{
		Url: DefaultRelayUrl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *Relay) Send(ctx context.Context, config RelayConfig, params TemplateParams) error {
	if !config.IsConfigured() {
		return ErrRelayNotConfigured
	}

	body, err := json.Marshal(relayRequest{
		ServiceId:      config.ServiceId,
		TemplateId:     config.TemplateId,
		UserId:         config.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, r.Url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "relay call failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := ioutil.ReadAll(resp.Body)
		return errors.Errorf("relay returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
