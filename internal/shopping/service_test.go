package shopping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlyhq/famly-backend/pkg/db/models"
	"github.com/famlyhq/famly-backend/pkg/enums"
	pkgerrors "github.com/famlyhq/famly-backend/pkg/errors"
)

type stubShoppingRepo struct {
	lists map[uuid.UUID]*models.ShoppingList
	items map[uuid.UUID]*models.ShoppingItem
}

func newStubShoppingRepo() *stubShoppingRepo {
	return &stubShoppingRepo{
		lists: map[uuid.UUID]*models.ShoppingList{},
		items: map[uuid.UUID]*models.ShoppingItem{},
	}
}

func (s *stubShoppingRepo) addList(list *models.ShoppingList) *models.ShoppingList {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	s.lists[list.ID] = list
	return list
}

func (s *stubShoppingRepo) addItem(item *models.ShoppingItem) *models.ShoppingItem {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item
}

func (s *stubShoppingRepo) CreateList(ctx context.Context, dto CreateListDTO) (*models.ShoppingList, error) {
	list := dto.ToModel()
	list.ID = uuid.New()
	s.lists[list.ID] = list
	return list, nil
}

func (s *stubShoppingRepo) FindListByID(ctx context.Context, familyID, id uuid.UUID) (*models.ShoppingList, error) {
	if list, ok := s.lists[id]; ok && list.FamilyID == familyID {
		cpy := *list
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubShoppingRepo) ListsByFamily(ctx context.Context, familyID uuid.UUID) ([]models.ShoppingList, error) {
	var out []models.ShoppingList
	for _, list := range s.lists {
		if list.FamilyID == familyID {
			out = append(out, *list)
		}
	}
	return out, nil
}

func (s *stubShoppingRepo) DeleteList(ctx context.Context, familyID, id uuid.UUID) error {
	delete(s.lists, id)
	for itemID, item := range s.items {
		if item.ListID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *stubShoppingRepo) CreateItem(ctx context.Context, dto CreateItemDTO) (*models.ShoppingItem, error) {
	item := dto.ToModel()
	item.ID = uuid.New()
	s.items[item.ID] = item
	return item, nil
}

func (s *stubShoppingRepo) FindItemByID(ctx context.Context, listID, id uuid.UUID) (*models.ShoppingItem, error) {
	if item, ok := s.items[id]; ok && item.ListID == listID {
		cpy := *item
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubShoppingRepo) ItemsByList(ctx context.Context, listID uuid.UUID) ([]models.ShoppingItem, error) {
	var out []models.ShoppingItem
	for _, item := range s.items {
		if item.ListID == listID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubShoppingRepo) SaveItem(ctx context.Context, item *models.ShoppingItem) error {
	s.items[item.ID] = item
	return nil
}

func (s *stubShoppingRepo) DeleteItem(ctx context.Context, listID, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

type stubMembershipRepo struct {
	members map[uuid.UUID]enums.FamilyRole
}

func (s *stubMembershipRepo) GetMembership(ctx context.Context, userID, familyID uuid.UUID) (*models.FamilyMembership, error) {
	if role, ok := s.members[userID]; ok {
		return &models.FamilyMembership{UserID: userID, FamilyID: familyID, Role: role}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type shoppingTestSetup struct {
	service  Service
	repo     *stubShoppingRepo
	familyID uuid.UUID
	member   uuid.UUID
}

func newShoppingTestSetup(t *testing.T) *shoppingTestSetup {
	t.Helper()
	repo := newStubShoppingRepo()
	member := uuid.New()
	svc, err := NewService(repo, &stubMembershipRepo{
		members: map[uuid.UUID]enums.FamilyRole{member: enums.FamilyRoleMember},
	})
	if err != nil {
		t.Fatalf("new shopping service: %v", err)
	}
	return &shoppingTestSetup{service: svc, repo: repo, familyID: uuid.New(), member: member}
}

func TestCreateListTrimsName(t *testing.T) {
	setup := newShoppingTestSetup(t)

	dto, err := setup.service.CreateList(context.Background(), setup.member, setup.familyID, "  Groceries  ")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if dto.Name != "Groceries" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
}

func TestAddItemToForeignListFails(t *testing.T) {
	setup := newShoppingTestSetup(t)
	foreign := setup.repo.addList(&models.ShoppingList{FamilyID: uuid.New(), Name: "Other"})

	_, err := setup.service.AddItem(context.Background(), setup.member, setup.familyID, foreign.ID, "Milk")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestToggleItemFlipsDoneBothWays(t *testing.T) {
	setup := newShoppingTestSetup(t)
	list := setup.repo.addList(&models.ShoppingList{FamilyID: setup.familyID, Name: "Groceries"})
	item := setup.repo.addItem(&models.ShoppingItem{ListID: list.ID, Title: "Milk"})

	dto, err := setup.service.ToggleItem(context.Background(), setup.member, setup.familyID, list.ID, item.ID)
	if err != nil {
		t.Fatalf("toggle item: %v", err)
	}
	if !dto.IsDone {
		t.Fatal("expected item to be done after first toggle")
	}

	dto, err = setup.service.ToggleItem(context.Background(), setup.member, setup.familyID, list.ID, item.ID)
	if err != nil {
		t.Fatalf("toggle item: %v", err)
	}
	if dto.IsDone {
		t.Fatal("expected item to be open after second toggle")
	}
}

func TestDeleteListRemovesItems(t *testing.T) {
	setup := newShoppingTestSetup(t)
	list := setup.repo.addList(&models.ShoppingList{FamilyID: setup.familyID, Name: "Groceries"})
	item := setup.repo.addItem(&models.ShoppingItem{ListID: list.ID, Title: "Milk"})

	if err := setup.service.DeleteList(context.Background(), setup.member, setup.familyID, list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if _, ok := setup.repo.items[item.ID]; ok {
		t.Fatal("expected items to be removed with the list")
	}
}

func TestListListsIncludesItems(t *testing.T) {
	setup := newShoppingTestSetup(t)
	list := setup.repo.addList(&models.ShoppingList{FamilyID: setup.familyID, Name: "Groceries"})
	setup.repo.addItem(&models.ShoppingItem{ListID: list.ID, Title: "Milk"})
	setup.repo.addItem(&models.ShoppingItem{ListID: list.ID, Title: "Eggs"})

	lists, err := setup.service.ListLists(context.Background(), setup.member, setup.familyID)
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}
	if len(lists[0].Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(lists[0].Items))
	}
}

func TestListItemsScopedToList(t *testing.T) {
	setup := newShoppingTestSetup(t)
	list := setup.repo.addList(&models.ShoppingList{FamilyID: setup.familyID, Name: "Groceries"})
	other := setup.repo.addList(&models.ShoppingList{FamilyID: setup.familyID, Name: "Hardware"})
	setup.repo.addItem(&models.ShoppingItem{ListID: list.ID, Title: "Milk"})
	setup.repo.addItem(&models.ShoppingItem{ListID: other.ID, Title: "Nails"})

	items, err := setup.service.ListItems(context.Background(), setup.member, setup.familyID, list.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Milk" {
		t.Fatalf("expected only the list's own items, got %+v", items)
	}
}

func TestViewerCannotToggle(t *testing.T) {
	setup := newShoppingTestSetup(t)
	viewer := uuid.New()
	svc, err := NewService(setup.repo, &stubMembershipRepo{
		members: map[uuid.UUID]enums.FamilyRole{viewer: enums.FamilyRoleViewer},
	})
	if err != nil {
		t.Fatalf("new shopping service: %v", err)
	}
	list := setup.repo.addList(&models.ShoppingList{FamilyID: setup.familyID, Name: "Groceries"})
	item := setup.repo.addItem(&models.ShoppingItem{ListID: list.ID, Title: "Milk"})

	_, toggleErr := svc.ToggleItem(context.Background(), viewer, setup.familyID, list.ID, item.ID)
	if typed := pkgerrors.As(toggleErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", toggleErr)
	}
}
