package settings_test

import (
	"context"

	"github.com/Kaptaan1992/honeybees-daycare/realtime"
	"github.com/Kaptaan1992/honeybees-daycare/settings"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakeSettingsStore struct {
	settings  store.Settings
	saved     int
	cloudCopy *store.Settings
}

func (f *fakeSettingsStore) GetSettings() store.Settings { return f.settings }

func (f *fakeSettingsStore) SaveSettings(ctx context.Context, s store.Settings) {
	f.settings = s
	f.saved++
}

func (f *fakeSettingsStore) SyncSettingsFromCloud(ctx context.Context) (store.Settings, bool) {
	if f.cloudCopy == nil {
		return store.Settings{}, false
	}
	merged := store.MergeSettings(f.settings, *f.cloudCopy)
	f.settings = merged
	return merged, true
}

type fakeChannel struct {
	ensured int
	rearmed int
}

func (f *fakeChannel) EnsureConnected(ctx context.Context) { f.ensured++ }
func (f *fakeChannel) Rearm(ctx context.Context)           { f.rearmed++ }

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

var _ = Describe("SettingsService", func() {

	var (
		ctx     context.Context
		st      *fakeSettingsStore
		channel *fakeChannel
		bus     *realtime.Bus
		events  []realtime.Event
		service *settings.SettingsService
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = &fakeSettingsStore{settings: store.Settings{
			DaycareName:   "Honeybees Daycare",
			FromEmail:     "teacher@honeybees.test",
			AdminPassword: "secret",
			CloudUrl:      "https://demo.supabase.co",
			CloudAnonKey:  "anon-key",
		}}
		channel = &fakeChannel{}
		bus = &realtime.Bus{}
		events = nil
		bus.Subscribe(func(e realtime.Event) {
			events = append(events, e)
		})
		service = &settings.SettingsService{Store: st, Channel: channel, Bus: bus}
	})

	Context("UpdateSettings", func() {

		It("should apply only the fields present in the patch", func() {
			updated, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				EmailSignature: strPtr("Warmly, Ms. Sana"),
				AutoSendTime:   strPtr("16:30"),
			})

			Expect(err).To(BeNil())
			Expect(updated.EmailSignature).To(Equal("Warmly, Ms. Sana"))
			Expect(updated.AutoSendTime).To(Equal("16:30"))
			Expect(updated.DaycareName).To(Equal("Honeybees Daycare"))
			Expect(updated.AdminPassword).To(Equal("secret"))
			Expect(st.saved).To(Equal(1))
		})

		It("should refuse to blank the daycare name", func() {
			_, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				DaycareName: strPtr(""),
			})

			Expect(err).To(Equal(settings.ErrEmptyDaycareName))
			Expect(st.saved).To(Equal(0))
		})

		It("should ignore an empty admin password", func() {
			updated, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				AdminPassword: strPtr(""),
			})

			Expect(err).To(BeNil())
			Expect(updated.AdminPassword).To(Equal("secret"))
		})

		It("should replace the admin password when one is given", func() {
			updated, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				AdminPassword: strPtr("hunter2"),
			})

			Expect(err).To(BeNil())
			Expect(updated.AdminPassword).To(Equal("hunter2"))
		})

		It("should toggle the copy-to-self default", func() {
			updated, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				SendCopyToSelfDefault: boolPtr(true),
			})

			Expect(err).To(BeNil())
			Expect(updated.SendCopyToSelfDefault).To(BeTrue())
		})

		It("should drop and reconnect the realtime channel when the cloud credentials change", func() {
			_, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				CloudUrl:     strPtr("https://other.supabase.co"),
				CloudAnonKey: strPtr("other-key"),
			})

			Expect(err).To(BeNil())
			Expect(channel.rearmed).To(Equal(1))
			Expect(channel.ensured).To(Equal(0))
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal(realtime.EventSettingsChanged))
			Expect(st.settings.CloudUrl).To(Equal("https://other.supabase.co"))
		})

		It("should leave an existing channel alone when the credentials are untouched", func() {
			_, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				EmailSignature: strPtr("Warmly, Ms. Sana"),
			})

			Expect(err).To(BeNil())
			Expect(channel.ensured).To(Equal(1))
			Expect(channel.rearmed).To(Equal(0))
		})

		It("should not reconnect when the patch restates the same credentials", func() {
			_, err := service.UpdateSettings(ctx, settings.SettingsTransport{
				CloudUrl:     strPtr("https://demo.supabase.co"),
				CloudAnonKey: strPtr("anon-key"),
			})

			Expect(err).To(BeNil())
			Expect(channel.ensured).To(Equal(1))
			Expect(channel.rearmed).To(Equal(0))
		})
	})

	Context("SyncFromCloud", func() {

		It("should merge the cloud copy and keep local credentials", func() {
			st.cloudCopy = &store.Settings{
				DaycareName:  "Honeybees Main Campus",
				FromEmail:    "office@honeybees.test",
				CloudUrl:     "",
				CloudAnonKey: "",
			}

			merged, err := service.SyncFromCloud(ctx)

			Expect(err).To(BeNil())
			Expect(merged.DaycareName).To(Equal("Honeybees Main Campus"))
			Expect(merged.CloudUrl).To(Equal("https://demo.supabase.co"))
			Expect(merged.CloudAnonKey).To(Equal("anon-key"))
			Expect(events).To(HaveLen(1))
		})

		It("should return the local settings untouched when the cloud is unreachable", func() {
			st.cloudCopy = nil

			current, err := service.SyncFromCloud(ctx)

			Expect(err).To(BeNil())
			Expect(current.DaycareName).To(Equal("Honeybees Daycare"))
			Expect(events).To(BeEmpty())
		})
	})
})
