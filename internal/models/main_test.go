package models

import "testing"

func TestItem_OwnedBy(t *testing.T) {
	owner := int64(7)
	tests := []struct {
		name   string
		item   Item
		caller int64
		want   bool
	}{
		{"owner", Item{OwnerID: &owner}, 7, true},
		{"other user", Item{OwnerID: &owner}, 8, false},
		{"unowned", Item{}, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.OwnedBy(tt.caller); got != tt.want {
				t.Errorf("OwnedBy(%d) = %v; want %v", tt.caller, got, tt.want)
			}
		})
	}
}

func TestItemPatch_Apply(t *testing.T) {
	item := Item{ID: 1, Name: "Laptop", Description: "old", ImageRef: "/uploads/a.png"}
	desc := ""
	got := ItemPatch{Description: &desc}.Apply(item)

	if got.Name != "Laptop" || got.ImageRef != "/uploads/a.png" {
		t.Errorf("unset fields changed: %+v", got)
	}
	if got.Description != "" {
		t.Errorf("Description = %q; want empty", got.Description)
	}
	if item.Description != "old" {
		t.Errorf("Apply mutated its input: %+v", item)
	}
}

func TestItemPatch_Empty(t *testing.T) {
	if !(ItemPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	name := "x"
	if (ItemPatch{Name: &name}).Empty() {
		t.Error("patch with name should not be empty")
	}
}
