package shopping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

type shoppingRepository interface {
	CreateList(ctx context.Context, dto CreateListDTO) (*models.ShoppingList, error)
	FindListByID(ctx context.Context, familyID, id uuid.UUID) (*models.ShoppingList, error)
	ListsByFamily(ctx context.Context, familyID uuid.UUID) ([]models.ShoppingList, error)
	DeleteList(ctx context.Context, familyID, id uuid.UUID) error
	CreateItem(ctx context.Context, dto CreateItemDTO) (*models.ShoppingItem, error)
	FindItemByID(ctx context.Context, listID, id uuid.UUID) (*models.ShoppingItem, error)
	ItemsByList(ctx context.Context, listID uuid.UUID) ([]models.ShoppingItem, error)
	SaveItem(ctx context.Context, item *models.ShoppingItem) error
	DeleteItem(ctx context.Context, listID, id uuid.UUID) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error)
}

// Service exposes shopping list operations.
type Service interface {
	ListLists(ctx context.Context, userID, familyID uuid.UUID) ([]ListWithItemsDTO, error)
	CreateList(ctx context.Context, userID, familyID uuid.UUID, name string) (*ListDTO, error)
	DeleteList(ctx context.Context, userID, familyID, listID uuid.UUID) error
	ListItems(ctx context.Context, userID, familyID, listID uuid.UUID) ([]ItemDTO, error)
	AddItem(ctx context.Context, userID, familyID, listID uuid.UUID, title string) (*ItemDTO, error)
	ToggleItem(ctx context.Context, userID, familyID, listID, itemID uuid.UUID) (*ItemDTO, error)
	DeleteItem(ctx context.Context, userID, familyID, listID, itemID uuid.UUID) error
}

type service struct {
	repo        shoppingRepository
	memberships membershipsRepository
}

// NewService builds a shopping service with the provided repositories.
func NewService(repo shoppingRepository, membershipsRepo membershipsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shopping repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{repo: repo, memberships: membershipsRepo}, nil
}

func (s *service) ListLists(ctx context.Context, userID, familyID uuid.UUID) ([]ListWithItemsDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	lists, err := s.repo.ListsByFamily(ctx, familyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shopping lists")
	}

	out := make([]ListWithItemsDTO, 0, len(lists))
	for i := range lists {
		items, err := s.repo.ItemsByList(ctx, lists[i].ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shopping items")
		}
		itemDTOs := make([]ItemDTO, 0, len(items))
		for j := range items {
			itemDTOs = append(itemDTOs, *ItemFromModel(&items[j]))
		}
		out = append(out, ListWithItemsDTO{
			ListDTO: *ListFromModel(&lists[i]),
			Items:   itemDTOs,
		})
	}
	return out, nil
}

func (s *service) CreateList(ctx context.Context, userID, familyID uuid.UUID, name string) (*ListDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list name is required")
	}

	list, err := s.repo.CreateList(ctx, CreateListDTO{
		FamilyID:  familyID,
		Name:      name,
		CreatedBy: userID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shopping list")
	}
	return ListFromModel(list), nil
}

func (s *service) DeleteList(ctx context.Context, userID, familyID, listID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return err
	}

	if _, err := s.loadList(ctx, familyID, listID); err != nil {
		return err
	}

	if err := s.repo.DeleteList(ctx, familyID, listID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shopping list")
	}
	return nil
}

func (s *service) ListItems(ctx context.Context, userID, familyID, listID uuid.UUID) ([]ItemDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleViewer); err != nil {
		return nil, err
	}

	if _, err := s.loadList(ctx, familyID, listID); err != nil {
		return nil, err
	}

	items, err := s.repo.ItemsByList(ctx, listID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shopping items")
	}

	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *ItemFromModel(&items[i]))
	}
	return out, nil
}

func (s *service) AddItem(ctx context.Context, userID, familyID, listID uuid.UUID, title string) (*ItemDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item title is required")
	}

	if _, err := s.loadList(ctx, familyID, listID); err != nil {
		return nil, err
	}

	item, err := s.repo.CreateItem(ctx, CreateItemDTO{ListID: listID, Title: title})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shopping item")
	}
	return ItemFromModel(item), nil
}

// ToggleItem flips the item's done flag.
func (s *service) ToggleItem(ctx context.Context, userID, familyID, listID, itemID uuid.UUID) (*ItemDTO, error) {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return nil, err
	}

	if _, err := s.loadList(ctx, familyID, listID); err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByID(ctx, listID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	item.IsDone = !item.IsDone
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save item")
	}
	return ItemFromModel(item), nil
}

func (s *service) DeleteItem(ctx context.Context, userID, familyID, listID, itemID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, familyID, enums.FamilyRoleMember); err != nil {
		return err
	}

	if _, err := s.loadList(ctx, familyID, listID); err != nil {
		return err
	}

	if _, err := s.repo.FindItemByID(ctx, listID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	if err := s.repo.DeleteItem(ctx, listID, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

func (s *service) loadList(ctx context.Context, familyID, listID uuid.UUID) (*models.ShoppingList, error) {
	list, err := s.repo.FindListByID(ctx, familyID, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load list")
	}
	return list, nil
}

func (s *service) requireRole(ctx context.Context, userID, familyID uuid.UUID, minRole enums.FamilyRole) error {
	membership, err := s.memberships.GetMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this family")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !membership.Role.AtLeast(minRole) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient family role")
	}
	return nil
}
