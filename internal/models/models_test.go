package models

import "testing"

func TestCategoryOwnership(t *testing.T) {
	owner := "user-1"

	t.Run("shared category is visible but immutable", func(t *testing.T) {
		c := &Category{Name: "Food", IsDefault: true}
		if _, ok := c.Owner().(Shared); !ok {
			t.Fatalf("expected Shared owner, got %T", c.Owner())
		}
		if !c.VisibleTo(owner) {
			t.Error("shared category should be visible")
		}
		if c.ModifiableBy(owner) {
			t.Error("shared category should not be modifiable")
		}
	})

	t.Run("user owned category", func(t *testing.T) {
		c := &Category{Name: "Hobby", UserID: &owner}
		o, ok := c.Owner().(UserOwned)
		if !ok || o.UserID != owner {
			t.Fatalf("expected UserOwned(%s), got %#v", owner, c.Owner())
		}
		if !c.VisibleTo(owner) || !c.ModifiableBy(owner) {
			t.Error("owner should see and modify own category")
		}
		if c.VisibleTo("user-2") || c.ModifiableBy("user-2") {
			t.Error("other users should not see or modify the category")
		}
	})
}

func TestBudgetDisplayName(t *testing.T) {
	catID := "cat-1"
	b := &Budget{CategoryID: &catID, Category: &Category{Name: "Food"}}
	if !b.IsCategoryScoped() {
		t.Error("expected category scoped budget")
	}
	if got := b.DisplayName(); got != "Food" {
		t.Errorf("DisplayName = %q, want Food", got)
	}

	overall := &Budget{Name: "Everything"}
	if overall.IsCategoryScoped() {
		t.Error("expected overall budget")
	}
	if got := overall.DisplayName(); got != "Everything" {
		t.Errorf("DisplayName = %q, want Everything", got)
	}
}

func TestBaseBeforeCreateKeepsExistingID(t *testing.T) {
	b := &Base{ID: "fixed"}
	if err := b.BeforeCreate(nil); err != nil {
		t.Fatal(err)
	}
	if b.ID != "fixed" {
		t.Errorf("ID = %s, want fixed", b.ID)
	}

	fresh := &Base{}
	if err := fresh.BeforeCreate(nil); err != nil {
		t.Fatal(err)
	}
	if len(fresh.ID) != 36 {
		t.Errorf("expected generated uuid, got %q", fresh.ID)
	}
}
