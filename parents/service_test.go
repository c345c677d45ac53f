package parents_test

import (
	"context"

	. "github.com/Kaptaan1992/honeybees-daycare/parents"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

type fakeParentStore struct {
	parents []store.Parent
	deleted []string
}

func (f *fakeParentStore) GetParents(ctx context.Context) []store.Parent { return f.parents }
func (f *fakeParentStore) SaveParents(ctx context.Context, parents []store.Parent) {
	f.parents = parents
}
func (f *fakeParentStore) DeleteParent(ctx context.Context, id string) {
	f.deleted = append(f.deleted, id)
}

var _ = Describe("ParentService", func() {

	var (
		ctx       = context.Background()
		service   *ParentService
		fakeStore *fakeParentStore
	)

	BeforeEach(func() {
		fakeStore = &fakeParentStore{}
		service = &ParentService{
			Store:           fakeStore,
			StringGenerator: &shared.StringGenerator{},
		}
	})

	Context("AddParent", func() {

		It("defaults relationship, language and the email opt-in", func() {
			parent, err := service.AddParent(ctx, ParentTransport{FullName: "Sana", Email: "sana@example.com"})

			Expect(err).To(BeNil())
			Expect(parent.Relationship).To(Equal(store.RelationshipGuardian))
			Expect(parent.PreferredLanguage).To(Equal(store.LanguageEnglish))
			Expect(parent.ReceivesEmail).To(BeTrue())
		})

		It("honours an explicit opt-out", func() {
			no := false
			parent, err := service.AddParent(ctx, ParentTransport{
				FullName:      "Omar",
				Email:         "omar@example.com",
				ReceivesEmail: &no,
			})

			Expect(err).To(BeNil())
			Expect(parent.ReceivesEmail).To(BeFalse())
		})

		It("rejects an invalid email", func() {
			_, err := service.AddParent(ctx, ParentTransport{FullName: "Sana", Email: "not-an-email"})
			Expect(errors.Cause(err)).To(Equal(ErrInvalidEmail))
		})
	})

	Context("UpdateParent", func() {

		BeforeEach(func() {
			fakeStore.parents = []store.Parent{
				{Id: "p1", FullName: "Sana", Email: "sana@example.com", ReceivesEmail: true},
			}
		})

		It("applies partial updates", func() {
			parent, err := service.UpdateParent(ctx, ParentTransport{Id: "p1", Phone: "555-0101"})

			Expect(err).To(BeNil())
			Expect(parent.Phone).To(Equal("555-0101"))
			Expect(parent.FullName).To(Equal("Sana"))
		})

		It("rejects a malformed replacement email", func() {
			_, err := service.UpdateParent(ctx, ParentTransport{Id: "p1", Email: "oops"})
			Expect(errors.Cause(err)).To(Equal(ErrInvalidEmail))
		})

		It("errors for an unknown parent", func() {
			_, err := service.UpdateParent(ctx, ParentTransport{Id: "nope"})
			Expect(errors.Cause(err)).To(Equal(ErrParentNotFound))
		})
	})

	Context("DeleteParent", func() {

		It("removes a known parent and rejects an unknown one", func() {
			fakeStore.parents = []store.Parent{{Id: "p1", FullName: "Sana", Email: "sana@example.com"}}

			Expect(service.DeleteParent(ctx, "p1")).To(Succeed())
			Expect(fakeStore.deleted).To(Equal([]string{"p1"}))
			Expect(errors.Cause(service.DeleteParent(ctx, "nope"))).To(Equal(ErrParentNotFound))
		})
	})
})
