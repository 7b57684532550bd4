// Package models defines the core data structures for users and inventory items.
package models

// User represents an application user known through an external identity provider.
type User struct {
	// ID is the internal identifier for the user.
	ID int64 `json:"id"`
	// ExternalID is the stable subject identifier issued by the identity provider.
	ExternalID string `json:"externalId"`
	// DisplayName is the human readable name reported by the provider.
	DisplayName string `json:"displayName,omitempty"`
	// Email is the address reported by the provider, if any.
	Email string `json:"email,omitempty"`
}

// Item is a single inventory entry with an attached image.
type Item struct {
	// ID is the unique identifier for the item.
	ID int64 `json:"id"`
	// Name is the required display name.
	Name string `json:"name"`
	// Description holds optional free text.
	Description string `json:"description"`
	// ImageRef is the public reference of the stored image.
	ImageRef string `json:"imageRef"`
	// OwnerID is the owning user. Nil only for seeded catalogue rows.
	OwnerID *int64 `json:"ownerId"`
}

// OwnedBy reports whether userID is the recorded owner of the item.
// Unowned items are owned by nobody.
func (i *Item) OwnedBy(userID int64) bool {
	return i.OwnerID != nil && *i.OwnerID == userID
}

// ItemPatch carries a partial update. Nil fields keep their previous value.
type ItemPatch struct {
	Name        *string
	Description *string
	ImageRef    *string
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.ImageRef == nil
}

// Apply returns a copy of item with the patch applied.
func (p ItemPatch) Apply(item Item) Item {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.ImageRef != nil {
		item.ImageRef = *p.ImageRef
	}
	return item
}
