package settings

import (
	"context"

	"github.com/Kaptaan1992/honeybees-daycare/realtime"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/pkg/errors"
)

var (
	ErrEmptyDaycareName = errors.New("daycareName cannot be empty")
)

type Service interface {
	GetSettings(ctx context.Context) (store.Settings, error)
	UpdateSettings(ctx context.Context, request SettingsTransport) (store.Settings, error)
	SyncFromCloud(ctx context.Context) (store.Settings, error)
}

type SettingsService struct {
	Store interface {
		GetSettings() store.Settings
		SaveSettings(ctx context.Context, settings store.Settings)
		SyncSettingsFromCloud(ctx context.Context) (store.Settings, bool)
	} `inject:""`
	Channel interface {
		EnsureConnected(ctx context.Context)
		Rearm(ctx context.Context)
	} `inject:""`
	Bus *realtime.Bus `inject:""`
}

func (s *SettingsService) GetSettings(ctx context.Context) (store.Settings, error) {
	return s.Store.GetSettings(), nil
}

// UpdateSettings applies the non-empty fields of the transport over the
// current settings, persists through the dual-write path, and re-arms the
// realtime connection so new cloud credentials take effect immediately.
func (s *SettingsService) UpdateSettings(ctx context.Context, request SettingsTransport) (store.Settings, error) {
	current := s.Store.GetSettings()
	previousUrl, previousKey := current.CloudUrl, current.CloudAnonKey

	if request.DaycareName != nil {
		if *request.DaycareName == "" {
			return store.Settings{}, ErrEmptyDaycareName
		}
		current.DaycareName = *request.DaycareName
	}
	if request.FromEmail != nil {
		current.FromEmail = *request.FromEmail
	}
	if request.EmailSignature != nil {
		current.EmailSignature = *request.EmailSignature
	}
	if request.TestEmail != nil {
		current.TestEmail = *request.TestEmail
	}
	if request.AdminPassword != nil && *request.AdminPassword != "" {
		current.AdminPassword = *request.AdminPassword
	}
	if request.AutoSendTime != nil {
		current.AutoSendTime = *request.AutoSendTime
	}
	if request.SendCopyToSelfDefault != nil {
		current.SendCopyToSelfDefault = *request.SendCopyToSelfDefault
	}
	if request.EmailjsServiceId != nil {
		current.EmailjsServiceId = *request.EmailjsServiceId
	}
	if request.EmailjsTemplateId != nil {
		current.EmailjsTemplateId = *request.EmailjsTemplateId
	}
	if request.EmailjsPublicKey != nil {
		current.EmailjsPublicKey = *request.EmailjsPublicKey
	}
	if request.CloudUrl != nil {
		current.CloudUrl = *request.CloudUrl
	}
	if request.CloudAnonKey != nil {
		current.CloudAnonKey = *request.CloudAnonKey
	}

	s.Store.SaveSettings(ctx, current)
	if current.CloudUrl != previousUrl || current.CloudAnonKey != previousKey {
		// a live channel would otherwise stay attached to the old mirror
		s.Channel.Rearm(ctx)
	} else {
		s.Channel.EnsureConnected(ctx)
	}
	s.Bus.Publish(realtime.Event{Type: realtime.EventSettingsChanged})
	return s.Store.GetSettings(), nil
}

func (s *SettingsService) SyncFromCloud(ctx context.Context) (store.Settings, error) {
	if merged, ok := s.Store.SyncSettingsFromCloud(ctx); ok {
		s.Bus.Publish(realtime.Event{Type: realtime.EventSettingsChanged})
		return merged, nil
	}
	return s.Store.GetSettings(), nil
}

// ServiceMiddleware is a chainable behavior modifier for SettingsService.
type ServiceMiddleware func(SettingsService) SettingsService
