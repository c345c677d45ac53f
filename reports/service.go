package reports

import (
	"context"
	"strings"
	"time"

	"github.com/Kaptaan1992/honeybees-daycare/mailer"
	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/pkg/errors"
)

var (
	ErrChildNotFound  = errors.New("child not found")
	ErrLogNotStarted  = errors.New("no daily log exists for that child and date")
	ErrNoRecipients   = errors.New("no opted-in parent has an email address")
	ErrDispatchFailed = errors.New("report could not be dispatched")
)

// Dispatch methods recorded on the send result.
const (
	MethodRelay  = "relay"
	MethodMailto = "mailto"
)

type Preview struct {
	Subject    string   `json:"subject"`
	TextBody   string   `json:"textBody"`
	HtmlBody   string   `json:"htmlBody"`
	Recipients []string `json:"recipients"`
}

type SendResult struct {
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
	Method     string   `json:"method"`
	MailtoUrl  string   `json:"mailtoUrl,omitempty"`
	MarkedSent bool     `json:"markedSent"`
}

type Service interface {
	PreviewReport(ctx context.Context, childId, date string) (Preview, error)
	SendReport(ctx context.Context, request SendRequest) (SendResult, error)
}

type ReportService struct {
	Store interface {
		GetDailyLogs(ctx context.Context) []store.DailyLog
		GetChildren(ctx context.Context) []store.Child
		GetParents(ctx context.Context) []store.Parent
		GetSettings() store.Settings
		AppendSendLog(ctx context.Context, log store.EmailSendLog)
		MarkLogSent(ctx context.Context, logId string) error
	} `inject:""`
	Holidays interface {
		ListUpcoming(ctx context.Context, from string) ([]store.Holiday, error)
	} `inject:""`
	Summary interface {
		DailySummary(ctx context.Context, log store.DailyLog, child store.Child, parent store.Parent) string
	} `inject:""`
	Relay interface {
		Send(ctx context.Context, config mailer.RelayConfig, params mailer.TemplateParams) error
	} `inject:""`
	StringGenerator *shared.StringGenerator `inject:""`

	// OpenMail defaults to launching the host mail client; tests swap it out.
	OpenMail func(mailtoUrl string) error
}

type reportContext struct {
	log      store.DailyLog
	child    store.Child
	parents  []store.Parent
	settings store.Settings
	holidays []store.Holiday
}

func (r *ReportService) resolve(ctx context.Context, childId, date string) (reportContext, error) {
	var rc reportContext

	found := false
	for _, child := range r.Store.GetChildren(ctx) {
		if child.Id == childId {
			rc.child = child
			found = true
			break
		}
	}
	if !found {
		return rc, ErrChildNotFound
	}

	found = false
	for _, log := range r.Store.GetDailyLogs(ctx) {
		if log.ChildId == childId && log.Date == date {
			rc.log = log
			found = true
			break
		}
	}
	if !found {
		return rc, ErrLogNotStarted
	}

	parentIds := map[string]bool{}
	for _, id := range rc.child.ParentIds {
		parentIds[id] = true
	}
	for _, parent := range r.Store.GetParents(ctx) {
		if parentIds[parent.Id] && parent.ReceivesEmail && parent.Email != "" {
			rc.parents = append(rc.parents, parent)
		}
	}

	rc.settings = r.Store.GetSettings()
	upcoming, err := r.Holidays.ListUpcoming(ctx, date)
	if err == nil {
		rc.holidays = upcoming
	}
	return rc, nil
}

func recipientEmails(parents []store.Parent) []string {
	emails := []string{}
	for _, p := range parents {
		emails = append(emails, p.Email)
	}
	return emails
}

// summaryParent picks the parent whose language preference steers the
// narrative. First opted-in parent wins; a zero parent means default English.
func summaryParent(parents []store.Parent) store.Parent {
	if len(parents) > 0 {
		return parents[0]
	}
	return store.Parent{}
}

func (r *ReportService) PreviewReport(ctx context.Context, childId, date string) (Preview, error) {
	rc, err := r.resolve(ctx, childId, date)
	if err != nil {
		return Preview{}, err
	}

	aiSummary := r.Summary.DailySummary(ctx, rc.log, rc.child, summaryParent(rc.parents))
	subject := Subject(rc.child, rc.log.Date)
	text := TextBody(rc.log, rc.child, rc.settings, aiSummary, rc.holidays)
	html, err := HtmlBody(rc.log, rc.child, rc.settings, aiSummary, rc.holidays)
	if err != nil {
		return Preview{}, err
	}

	return Preview{
		Subject:    subject,
		TextBody:   text,
		HtmlBody:   html,
		Recipients: recipientEmails(rc.parents),
	}, nil
}

type SendRequest struct {
	ChildId    string
	Date       string
	TestSend   bool
	CopyToSelf *bool
}

// SendReport composes and dispatches the daily report. The relay is tried
// first when configured; any relay problem falls back to opening the host
// mail client with a prefilled mailto URL, so a confirmed recipient list
// always has a way out of the machine. Test sends go to the configured test
// address only and never advance the log's lifecycle.
func (r *ReportService) SendReport(ctx context.Context, request SendRequest) (SendResult, error) {
	rc, err := r.resolve(ctx, request.ChildId, request.Date)
	if err != nil {
		return SendResult{}, err
	}

	recipients := recipientEmails(rc.parents)
	if request.TestSend {
		if rc.settings.TestEmail == "" {
			return SendResult{}, ErrNoRecipients
		}
		recipients = []string{rc.settings.TestEmail}
	} else {
		copyToSelf := rc.settings.SendCopyToSelfDefault
		if request.CopyToSelf != nil {
			copyToSelf = *request.CopyToSelf
		}
		if copyToSelf && rc.settings.FromEmail != "" {
			recipients = append(recipients, rc.settings.FromEmail)
		}
	}
	if len(recipients) == 0 {
		return SendResult{}, ErrNoRecipients
	}

	aiSummary := r.Summary.DailySummary(ctx, rc.log, rc.child, summaryParent(rc.parents))
	subject := Subject(rc.child, rc.log.Date)
	text := TextBody(rc.log, rc.child, rc.settings, aiSummary, rc.holidays)
	html, err := HtmlBody(rc.log, rc.child, rc.settings, aiSummary, rc.holidays)
	if err != nil {
		return SendResult{}, err
	}

	result := SendResult{Subject: subject, Recipients: recipients}

	config := mailer.RelayConfig{
		ServiceId:  rc.settings.EmailjsServiceId,
		TemplateId: rc.settings.EmailjsTemplateId,
		PublicKey:  rc.settings.EmailjsPublicKey,
	}
	relayErr := mailer.ErrRelayNotConfigured
	if config.IsConfigured() {
		relayErr = r.Relay.Send(ctx, config, mailer.TemplateParams{
			ToEmail:     strings.Join(recipients, ", "),
			ChildName:   rc.child.FirstName,
			Subject:     subject,
			Message:     text,
			HtmlMessage: html,
			DaycareName: rc.settings.DaycareName,
		})
	}

	errorMessage := ""
	if relayErr == nil {
		result.Method = MethodRelay
	} else {
		// fallback: hand the composed report to the host mail client
		result.Method = MethodMailto
		result.MailtoUrl = mailer.BuildMailtoUrl(recipients, subject, text)
		open := r.OpenMail
		if open == nil {
			open = mailer.OpenMailClient
		}
		if openErr := open(result.MailtoUrl); openErr != nil {
			r.appendSendLog(ctx, rc.log.Id, recipients, subject, store.SendStatusFailed, openErr.Error())
			return result, errors.Wrap(ErrDispatchFailed, openErr.Error())
		}
		if relayErr != mailer.ErrRelayNotConfigured {
			errorMessage = relayErr.Error()
		}
	}

	r.appendSendLog(ctx, rc.log.Id, recipients, subject, store.SendStatusSent, errorMessage)
	if !request.TestSend {
		if err := r.Store.MarkLogSent(ctx, rc.log.Id); err == nil {
			result.MarkedSent = true
		}
	}
	return result, nil
}

func (r *ReportService) appendSendLog(ctx context.Context, logId string, recipients []string, subject, status, errorMessage string) {
	r.Store.AppendSendLog(ctx, store.EmailSendLog{
		Id:           r.StringGenerator.GenerateUuid(),
		DailyLogId:   logId,
		SentTo:       recipients,
		Subject:      subject,
		SentAt:       time.Now().Format(time.RFC3339),
		Status:       status,
		ErrorMessage: errorMessage,
	})
}

// ServiceMiddleware is a chainable behavior modifier for ReportService.
type ServiceMiddleware func(ReportService) ReportService
