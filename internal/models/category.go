package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. A category without a user
// is a shared default, visible to everyone and editable by no one.
type Category struct {
	Base
	UserID    *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name      string       `gorm:"not null" json:"name"`
	Type      CategoryType `gorm:"not null" json:"type"`
	IsDefault bool         `gorm:"not null;index" json:"is_default"`
}

// Ownership is the tagged variant describing who owns a category.
// It is implemented by UserOwned and Shared only.
type Ownership interface {
	isOwnership()
}

// UserOwned marks a category created by a single user.
type UserOwned struct {
	UserID string
}

// Shared marks a global default category.
type Shared struct{}

func (UserOwned) isOwnership() {}
func (Shared) isOwnership()    {}

// Owner returns the ownership variant of the category.
func (c *Category) Owner() Ownership {
	if c.IsDefault || c.UserID == nil {
		return Shared{}
	}
	return UserOwned{UserID: *c.UserID}
}

// VisibleTo reports whether userID may read the category.
func (c *Category) VisibleTo(userID string) bool {
	switch o := c.Owner().(type) {
	case Shared:
		return true
	case UserOwned:
		return o.UserID == userID
	}
	return false
}

// ModifiableBy reports whether userID may edit or delete the category.
func (c *Category) ModifiableBy(userID string) bool {
	o, ok := c.Owner().(UserOwned)
	return ok && o.UserID == userID
}
