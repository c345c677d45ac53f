package store_test

import (
	"context"
	"encoding/json"

	. "github.com/Kaptaan1992/honeybees-daycare/store"
	"github.com/Kaptaan1992/honeybees-daycare/store/mocks"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

var _ = Describe("Store", func() {

	var (
		ctx        = context.Background()
		appStore   *Store
		local      *mocks.MemoryLocal
		mirror     *mocks.MockMirror
		cloudError error
	)

	newStore := func() *Store {
		return &Store{
			Local:           local,
			Logger:          shared.NewLogger("store-test"),
			StringGenerator: &shared.StringGenerator{},
			CloudFactory: func(url, key string) (Mirror, error) {
				if cloudError != nil {
					return nil, cloudError
				}
				return mirror, nil
			},
		}
	}

	localChildren := func() []Child {
		payload, err := local.Get(CollectionChildren)
		Expect(err).To(BeNil())
		children := []Child{}
		if payload != nil {
			Expect(json.Unmarshal(payload, &children)).To(Succeed())
		}
		return children
	}

	BeforeEach(func() {
		local = mocks.NewMemoryLocal()
		mirror = &mocks.MockMirror{}
		cloudError = nil
		appStore = newStore()
	})

	Context("with the cloud mirror disabled", func() {

		BeforeEach(func() {
			cloudError = ErrCloudDisabled
		})

		It("round-trips children through the local store alone", func() {
			appStore.SaveChildren(ctx, []Child{{Id: "c1", FirstName: "Ava"}})

			children := appStore.GetChildren(ctx)
			Expect(children).To(HaveLen(1))
			Expect(children[0].FirstName).To(Equal("Ava"))
			mirror.AssertNotCalled(GinkgoT(), "Upsert", mock.Anything, mock.Anything)
		})

		It("reports cloud sync as off", func() {
			Expect(appStore.IsCloudEnabled()).To(BeFalse())
		})
	})

	Context("with the cloud mirror reachable", func() {

		It("writes locally and mirrors the write", func() {
			mirror.On("Upsert", TableChildren, mock.Anything).Return(nil)

			appStore.SaveChildren(ctx, []Child{{Id: "c1", FirstName: "Ava"}})

			Expect(localChildren()).To(HaveLen(1))
			mirror.AssertCalled(GinkgoT(), "Upsert", TableChildren, mock.Anything)
		})

		It("lets the cloud copy overwrite the local one on read", func() {
			mirror.On("Upsert", TableChildren, mock.Anything).Return(nil)
			appStore.SaveChildren(ctx, []Child{{Id: "c1", FirstName: "Stale"}})
			remote, _ := json.Marshal([]Child{{Id: "c1", FirstName: "Fresh"}})
			mirror.On("SelectAll", TableChildren).Return(remote, nil)

			children := appStore.GetChildren(ctx)

			Expect(children).To(HaveLen(1))
			Expect(children[0].FirstName).To(Equal("Fresh"))
			Expect(localChildren()[0].FirstName).To(Equal("Fresh"))
		})

		It("falls back to the local copy when the cloud read fails", func() {
			mirror.On("Upsert", TableChildren, mock.Anything).Return(nil)
			appStore.SaveChildren(ctx, []Child{{Id: "c1", FirstName: "Ava"}})
			mirror.On("SelectAll", TableChildren).Return(nil, errors.New("network down"))

			children := appStore.GetChildren(ctx)

			Expect(children).To(HaveLen(1))
			Expect(children[0].FirstName).To(Equal("Ava"))
		})

		It("keeps serving after a cloud write failure", func() {
			mirror.On("Upsert", TableChildren, mock.Anything).Return(errors.New("network down"))

			appStore.SaveChildren(ctx, []Child{{Id: "c1", FirstName: "Ava"}})

			Expect(localChildren()).To(HaveLen(1))
		})
	})

	Context("DeleteParent", func() {

		BeforeEach(func() {
			cloudError = ErrCloudDisabled
			appStore.SaveParents(ctx, []Parent{{Id: "p1", FullName: "Sana"}, {Id: "p2", FullName: "Omar"}})
			appStore.SaveChildren(ctx, []Child{{Id: "c1", ParentIds: []string{"p1", "p2"}}})
		})

		It("removes the parent and detaches it from children", func() {
			appStore.DeleteParent(ctx, "p1")

			Expect(appStore.GetParents(ctx)).To(HaveLen(1))
			Expect(appStore.GetChildren(ctx)[0].ParentIds).To(Equal([]string{"p2"}))
		})
	})

	Context("settings", func() {

		It("serves defaults before anything is stored", func() {
			cloudError = ErrCloudDisabled
			settings := appStore.GetSettings()
			Expect(settings.DaycareName).To(Equal("Honeybees Daycare"))
			Expect(settings.AdminPassword).To(Equal(DefaultAdminPassword))
		})

		It("never mirrors the cloud connection credentials", func() {
			mirror.On("Upsert", TableSettings, mock.Anything).Return(nil)

			settings := DefaultSettings()
			settings.CloudUrl = "https://demo.supabase.co"
			settings.CloudAnonKey = "anon-key"
			appStore.SaveSettings(ctx, settings)

			Expect(mirror.Calls).NotTo(BeEmpty())
			for _, call := range mirror.Calls {
				if call.Method != "Upsert" {
					continue
				}
				payload := call.Arguments.String(1)
				Expect(payload).NotTo(ContainSubstring("demo.supabase.co"))
				Expect(payload).NotTo(ContainSubstring("anon-key"))
			}
		})

		It("keeps the local credentials through a cloud-origin merge", func() {
			mirror.On("Upsert", mock.Anything, mock.Anything).Return(nil)
			settings := DefaultSettings()
			settings.CloudUrl = "https://demo.supabase.co"
			settings.CloudAnonKey = "anon-key"
			appStore.SaveSettings(ctx, settings)

			remote := DefaultSettings()
			remote.DaycareName = "Renamed By Another Device"
			remote.CloudUrl = ""
			remote.CloudAnonKey = ""
			rows, _ := json.Marshal([]struct {
				Id   string   `json:"id"`
				Data Settings `json:"data"`
			}{{Id: SettingsRowId, Data: remote}})
			mirror.On("SelectById", TableSettings, SettingsRowId).Return(rows, nil)

			merged, ok := appStore.SyncSettingsFromCloud(ctx)

			Expect(ok).To(BeTrue())
			Expect(merged.DaycareName).To(Equal("Renamed By Another Device"))
			Expect(merged.CloudUrl).To(Equal("https://demo.supabase.co"))
			Expect(merged.CloudAnonKey).To(Equal("anon-key"))
		})
	})

	Context("SeedCloud", func() {

		BeforeEach(func() {
			mirror.On("Upsert", mock.Anything, mock.Anything).Return(nil)
			appStore.SaveChildren(ctx, []Child{{Id: "c1", FirstName: "Ava"}})
		})

		It("pushes local data when the mirror is empty", func() {
			mirror.On("Count", TableChildren).Return(0, nil)
			mirror.On("Insert", mock.Anything, mock.Anything).Return(nil)

			appStore.SeedCloud(ctx)

			mirror.AssertCalled(GinkgoT(), "Insert", TableChildren, mock.Anything)
		})

		It("leaves a populated mirror untouched", func() {
			mirror.On("Count", TableChildren).Return(3, nil)

			appStore.SeedCloud(ctx)

			mirror.AssertNotCalled(GinkgoT(), "Insert", mock.Anything, mock.Anything)
		})
	})

	Context("admin auth flag", func() {

		BeforeEach(func() {
			cloudError = ErrCloudDisabled
		})

		It("starts logged out, flips on login, clears on logout", func() {
			Expect(appStore.IsAuthenticated()).To(BeFalse())
			appStore.Login()
			Expect(appStore.IsAuthenticated()).To(BeTrue())
			appStore.Logout()
			Expect(appStore.IsAuthenticated()).To(BeFalse())
		})
	})
})
