package authentication_test

import (
	"context"

	"github.com/Kaptaan1992/honeybees-daycare/authentication"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakeAuthStore struct {
	settings      store.Settings
	authenticated bool
}

func (f *fakeAuthStore) GetSettings() store.Settings { return f.settings }
func (f *fakeAuthStore) Login()                      { f.authenticated = true }
func (f *fakeAuthStore) Logout()                     { f.authenticated = false }
func (f *fakeAuthStore) IsAuthenticated() bool       { return f.authenticated }

var _ = Describe("AuthService", func() {

	var (
		ctx     context.Context
		st      *fakeAuthStore
		service *authentication.AuthService
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = &fakeAuthStore{settings: store.Settings{AdminPassword: "secret"}}
		service = &authentication.AuthService{Store: st}
	})

	Context("Login", func() {

		It("should flip the device flag on the right credentials", func() {
			err := service.Login(ctx, "admin", "secret")
			Expect(err).To(BeNil())
			Expect(service.IsAuthenticated(ctx)).To(BeTrue())
		})

		It("should reject a wrong password", func() {
			err := service.Login(ctx, "admin", "wrong")
			Expect(err).To(Equal(authentication.ErrBadCredentials))
			Expect(service.IsAuthenticated(ctx)).To(BeFalse())
		})

		It("should reject an unknown username even with the right password", func() {
			err := service.Login(ctx, "root", "secret")
			Expect(err).To(Equal(authentication.ErrBadCredentials))
		})

		It("should fall back to the default password when none is configured", func() {
			st.settings.AdminPassword = ""

			Expect(service.Login(ctx, "admin", "secret")).To(Equal(authentication.ErrBadCredentials))
			Expect(service.Login(ctx, "admin", store.DefaultAdminPassword)).To(BeNil())
			Expect(service.IsAuthenticated(ctx)).To(BeTrue())
		})
	})

	Context("Logout", func() {

		It("should clear the device flag", func() {
			Expect(service.Login(ctx, "admin", "secret")).To(BeNil())
			Expect(service.Logout(ctx)).To(BeNil())
			Expect(service.IsAuthenticated(ctx)).To(BeFalse())
		})

		It("should be a no-op when not logged in", func() {
			Expect(service.Logout(ctx)).To(BeNil())
			Expect(service.IsAuthenticated(ctx)).To(BeFalse())
		})
	})
})
