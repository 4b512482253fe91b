// Package directory provides code/id lookups over a snapshot's item and user tables.
package directory

import "github.com/mamadbah2/stockdesk/internal/domain/models"

// FindItem returns the first item with the given code. The boolean separates
// "not found" from a match whose fields happen to be zero.
func FindItem(items []models.Item, code string) (models.Item, bool) {
	for _, item := range items {
		if item.Code == code {
			return item, true
		}
	}
	return models.Item{}, false
}

// FindUser returns the first user with the given id.
func FindUser(users []models.User, id string) (models.User, bool) {
	for _, user := range users {
		if user.ID == id {
			return user, true
		}
	}
	return models.User{}, false
}

// ItemName resolves an item name, blank when the code is unknown.
func ItemName(items []models.Item, code string) string {
	item, _ := FindItem(items, code)
	return item.Name
}
