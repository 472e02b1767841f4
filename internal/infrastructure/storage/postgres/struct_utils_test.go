package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"datacatalog/internal/core/id"
)

type Timestamps struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type sampleRow struct {
	ID    id.ID    `db:"id"`
	Name  string   `db:"name"`
	Notes *string  `db:"notes"`
	Tags  []string `db:"-"`
	Timestamps
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[sampleRow]()

	assert.Equal(t, []string{"id", "name", "notes", "created_at", "updated_at"}, cols)
}

func TestQualify(t *testing.T) {
	assert.Equal(t, []string{"p.id", "p.name"}, Qualify("p", []string{"id", "name"}))
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	row := &sampleRow{
		ID:         id.New(),
		Name:       "Tablero",
		Tags:       []string{"ignored"},
		Timestamps: Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	m := StructToMap(row, "created_at")

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, "Tablero", m["name"])
	assert.Equal(t, (*string)(nil), m["notes"])
	assert.Equal(t, now, m["updated_at"])
	assert.NotContains(t, m, "created_at")
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 4)
}
