package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"planora/internal/core/entity"
	"planora/internal/core/id"
)

type mockResource struct {
	entity.Base
	entity.TenantOwned
	Name     string `db:"name" json:"name"`
	Secret   string `db:"-" json:"-"`
	Internal string
	IsActive bool `db:"is_active" json:"isActive"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockResource]()

	expected := []string{
		"id", "version", "created_at", "updated_at",
		"entrepreneur_id", "name", "is_active",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "secret")
	assert.NotContains(t, cols, "Internal")
}

func TestExtractDBColumns_PointerType(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[mockResource](), ExtractDBColumns[*mockResource]())
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	ownerID := id.New()
	res := mockResource{
		Base: entity.Base{
			ID:        id.New(),
			Version:   5,
			CreatedAt: now,
			UpdatedAt: now,
		},
		TenantOwned: entity.TenantOwned{EntrepreneurID: ownerID},
		Name:        "main gateway",
		Secret:      "never persisted via map",
		IsActive:    true,
	}

	m := StructToMap(res)

	assert.Equal(t, res.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, now, m["updated_at"])
	assert.Equal(t, ownerID, m["entrepreneur_id"])
	assert.Equal(t, "main gateway", m["name"])
	assert.Equal(t, true, m["is_active"])

	_, hasSecret := m["secret"]
	assert.False(t, hasSecret)
}

func TestStructToMap_Pointer(t *testing.T) {
	res := &mockResource{Base: entity.NewBase(), Name: "ptr"}

	m := StructToMap(res)
	assert.Equal(t, "ptr", m["name"])
	assert.Equal(t, res.ID, m["id"])
}
