package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMovementType(t *testing.T) {
	mt, ok := ParseMovementType(" in ")
	assert.True(t, ok)
	assert.Equal(t, MovementIn, mt)

	mt, ok = ParseMovementType("Out")
	assert.True(t, ok)
	assert.Equal(t, MovementOut, mt)

	_, ok = ParseMovementType("ADJUST")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUser, ParseRole("manager"))
}

func TestItemLowStock(t *testing.T) {
	assert.True(t, Item{Stock: 2, Min: 2}.LowStock())
	assert.False(t, Item{Stock: 3, Min: 2}.LowStock())
	assert.False(t, Item{Stock: 0, Min: 0}.LowStock())
}
