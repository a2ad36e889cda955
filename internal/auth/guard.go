package auth

import "warehouse/internal/models"

// Action is an inventory operation subject to the guard.
type Action string

const (
	ActionFetch    Action = "fetch"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionDecrease Action = "decrease"
)

// Permits reports whether caller may perform action.
func Permits(caller *models.User, action Action) bool {
	if caller == nil || !caller.Category.Valid() {
		return false
	}
	switch action {
	case ActionFetch:
		return true
	case ActionCreate, ActionUpdate, ActionDelete:
		return caller.Category == models.CategorySeller
	case ActionDecrease:
		return caller.Category == models.CategoryBuyer
	default:
		return false
	}
}
