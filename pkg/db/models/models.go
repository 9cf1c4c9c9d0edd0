package models

// All returns every model managed by the schema, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Family{},
		&FamilyMembership{},
		&FamilyInvite{},
		&Task{},
		&Event{},
		&ShoppingList{},
		&ShoppingItem{},
		&Expense{},
	}
}
