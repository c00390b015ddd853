package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/buyside/internal/core"
)

func TestSchemasRegistered(t *testing.T) {
	fb, ok := core.SchemaFor(core.KindFactbook)
	require.True(t, ok)
	assert.Equal(t, "MARCA", fb.NameColumn)
	assert.Equal(t, "EMPRESA", fb.CompanyColumn)

	pl, ok := core.SchemaFor(core.KindPipeline)
	require.True(t, ok)
	assert.Equal(t, "Name", pl.NameColumn)
	assert.Equal(t, []string{"Notes", "Tags"}, pl.SearchColumns)

	m, ok := core.SchemaFor(core.KindMapping)
	require.True(t, ok)
	assert.Equal(t, fb.NameColumn, m.NameColumn)

	assert.Len(t, core.Schemas(), 3)
}

func TestRegisterSchema_DuplicatePanics(t *testing.T) {
	assert.Panics(t, registerFactbook)
}
