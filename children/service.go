package children

import (
	"context"
	"time"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

var (
	ErrChildNotFound = errors.New("child not found")
	ErrEmptyChild    = errors.New("childId cannot be empty")
	ErrNoName        = errors.New("firstName and lastName are mandatory")
)

type Service interface {
	AddChild(ctx context.Context, request ChildTransport) (store.Child, error)
	UpdateChild(ctx context.Context, request ChildTransport) (store.Child, error)
	GetChild(ctx context.Context, childId string) (store.Child, error)
	ListChildren(ctx context.Context) ([]store.Child, error)
	DeleteChild(ctx context.Context, childId string) error
}

type ChildService struct {
	Store interface {
		GetChildren(ctx context.Context) []store.Child
		SaveChildren(ctx context.Context, children []store.Child)
		DeleteChild(ctx context.Context, id string)
	} `inject:""`
	StringGenerator *shared.StringGenerator `inject:""`
}

func (c *ChildService) AddChild(ctx context.Context, request ChildTransport) (store.Child, error) {
	if request.FirstName == "" || request.LastName == "" {
		return store.Child{}, ErrNoName
	}

	birthDate := ""
	if request.BirthDate != "" {
		t, err := dateparse.ParseIn(request.BirthDate, time.UTC)
		if err != nil {
			return store.Child{}, errors.Wrap(err, "failed to parse birth date")
		}
		birthDate = t.Format("2006-01-02")
	}

	child := store.Child{
		Id:               c.StringGenerator.GenerateUuid(),
		FirstName:        request.FirstName,
		LastName:         request.LastName,
		Nickname:         request.Nickname,
		BirthDate:        birthDate,
		Classroom:        request.Classroom,
		Allergies:        request.Allergies,
		DietaryNotes:     request.DietaryNotes,
		NapNotes:         request.NapNotes,
		EmergencyNotes:   request.EmergencyNotes,
		Active:           true,
		ParentIds:        request.ParentIds,
		DailyMedications: request.DailyMedications,
	}
	if child.ParentIds == nil {
		child.ParentIds = []string{}
	}

	children := c.Store.GetChildren(ctx)
	c.Store.SaveChildren(ctx, append(children, child))
	return child, nil
}

func (c *ChildService) GetChild(ctx context.Context, childId string) (store.Child, error) {
	for _, child := range c.Store.GetChildren(ctx) {
		if child.Id == childId {
			return child, nil
		}
	}
	return store.Child{}, ErrChildNotFound
}

func (c *ChildService) ListChildren(ctx context.Context) ([]store.Child, error) {
	return c.Store.GetChildren(ctx), nil
}

func (c *ChildService) UpdateChild(ctx context.Context, request ChildTransport) (store.Child, error) {
	if request.Id == "" {
		return store.Child{}, ErrEmptyChild
	}

	children := c.Store.GetChildren(ctx)
	for i, child := range children {
		if child.Id != request.Id {
			continue
		}

		if request.FirstName != "" {
			child.FirstName = request.FirstName
		}
		if request.LastName != "" {
			child.LastName = request.LastName
		}
		if request.BirthDate != "" {
			t, err := dateparse.ParseIn(request.BirthDate, time.UTC)
			if err != nil {
				return store.Child{}, errors.Wrap(err, "failed to parse birth date")
			}
			child.BirthDate = t.Format("2006-01-02")
		}
		child.Nickname = request.Nickname
		child.Classroom = request.Classroom
		child.Allergies = request.Allergies
		child.DietaryNotes = request.DietaryNotes
		child.NapNotes = request.NapNotes
		child.EmergencyNotes = request.EmergencyNotes
		if request.Active != nil {
			child.Active = *request.Active
		}
		if request.ParentIds != nil {
			child.ParentIds = request.ParentIds
		}
		if request.DailyMedications != nil {
			child.DailyMedications = request.DailyMedications
		}

		children[i] = child
		c.Store.SaveChildren(ctx, children)
		return child, nil
	}
	return store.Child{}, ErrChildNotFound
}

func (c *ChildService) DeleteChild(ctx context.Context, childId string) error {
	if _, err := c.GetChild(ctx, childId); err != nil {
		return err
	}
	c.Store.DeleteChild(ctx, childId)
	return nil
}

// ServiceMiddleware is a chainable behavior modifier for ChildService.
type ServiceMiddleware func(ChildService) ChildService
