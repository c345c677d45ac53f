package parents

import (
	"context"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/badoux/checkmail"
	"github.com/pkg/errors"
)

var (
	ErrParentNotFound = errors.New("parent not found")
	ErrEmptyParent    = errors.New("parentId cannot be empty")
	ErrInvalidEmail   = errors.New("a valid email address is mandatory")
)

type Service interface {
	AddParent(ctx context.Context, request ParentTransport) (store.Parent, error)
	UpdateParent(ctx context.Context, request ParentTransport) (store.Parent, error)
	GetParent(ctx context.Context, parentId string) (store.Parent, error)
	ListParents(ctx context.Context) ([]store.Parent, error)
	DeleteParent(ctx context.Context, parentId string) error
}

type ParentService struct {
	Store interface {
		GetParents(ctx context.Context) []store.Parent
		SaveParents(ctx context.Context, parents []store.Parent)
		DeleteParent(ctx context.Context, id string)
	} `inject:""`
	StringGenerator *shared.StringGenerator `inject:""`
}

func (p *ParentService) AddParent(ctx context.Context, request ParentTransport) (store.Parent, error) {
	if err := checkmail.ValidateFormat(request.Email); err != nil {
		return store.Parent{}, ErrInvalidEmail
	}

	parent := store.Parent{
		Id:                p.StringGenerator.GenerateUuid(),
		FullName:          request.FullName,
		Email:             request.Email,
		Phone:             request.Phone,
		Relationship:      store.Relationship(request.Relationship),
		PreferredLanguage: store.Language(request.PreferredLanguage),
		ReceivesEmail:     request.ReceivesEmail == nil || *request.ReceivesEmail,
	}
	if parent.Relationship == "" {
		parent.Relationship = store.RelationshipGuardian
	}
	if parent.PreferredLanguage == "" {
		parent.PreferredLanguage = store.LanguageEnglish
	}

	parents := p.Store.GetParents(ctx)
	p.Store.SaveParents(ctx, append(parents, parent))
	return parent, nil
}

func (p *ParentService) GetParent(ctx context.Context, parentId string) (store.Parent, error) {
	for _, parent := range p.Store.GetParents(ctx) {
		if parent.Id == parentId {
			return parent, nil
		}
	}
	return store.Parent{}, ErrParentNotFound
}

func (p *ParentService) ListParents(ctx context.Context) ([]store.Parent, error) {
	return p.Store.GetParents(ctx), nil
}

func (p *ParentService) UpdateParent(ctx context.Context, request ParentTransport) (store.Parent, error) {
	if request.Id == "" {
		return store.Parent{}, ErrEmptyParent
	}
	if request.Email != "" && checkmail.ValidateFormat(request.Email) != nil {
		return store.Parent{}, ErrInvalidEmail
	}

	parents := p.Store.GetParents(ctx)
	for i, parent := range parents {
		if parent.Id != request.Id {
			continue
		}

		if request.FullName != "" {
			parent.FullName = request.FullName
		}
		if request.Email != "" {
			parent.Email = request.Email
		}
		parent.Phone = request.Phone
		if request.Relationship != "" {
			parent.Relationship = store.Relationship(request.Relationship)
		}
		if request.PreferredLanguage != "" {
			parent.PreferredLanguage = store.Language(request.PreferredLanguage)
		}
		if request.ReceivesEmail != nil {
			parent.ReceivesEmail = *request.ReceivesEmail
		}

		parents[i] = parent
		p.Store.SaveParents(ctx, parents)
		return parent, nil
	}
	return store.Parent{}, ErrParentNotFound
}

func (p *ParentService) DeleteParent(ctx context.Context, parentId string) error {
	if _, err := p.GetParent(ctx, parentId); err != nil {
		return err
	}
	p.Store.DeleteParent(ctx, parentId)
	return nil
}

// ServiceMiddleware is a chainable behavior modifier for ParentService.
type ServiceMiddleware func(ParentService) ParentService
