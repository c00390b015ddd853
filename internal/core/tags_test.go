package core

import (
	"bytes"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagLog_Append(t *testing.T) {
	log := NewTagLog(10)
	log.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	entry, err := log.Append("BRAND A", "  priority target ")
	require.NoError(t, err)

	assert.Equal(t, "priority target", entry.Tag)
	assert.Equal(t, "BRAND A", entry.SearchTerm)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Tag 'priority target' added for BRAND A", entry.Message())
	assert.Equal(t, []TagEntry{entry}, log.Entries())
}

func TestTagLog_EmptyTag(t *testing.T) {
	log := NewTagLog(10)

	for _, tag := range []string{"", "   ", "\t"} {
		_, err := log.Append("BRAND A", tag)
		assert.ErrorIs(t, err, ErrEmptyTag)
	}
	assert.Equal(t, 0, log.Len())
	assert.Equal(t, "Please enter a valid tag.", MapError(ErrEmptyTag).Message)
}

func TestTagLog_Limit(t *testing.T) {
	log := NewTagLog(2)

	_, err := log.Append("A", "one")
	require.NoError(t, err)
	_, err = log.Append("A", "two")
	require.NoError(t, err)

	_, err = log.Append("A", "three")
	assert.ErrorIs(t, err, ErrTagLimit)
	assert.Equal(t, "TAG002", MapError(err).Code)
	assert.Equal(t, 2, log.Len())
}

func TestTagLog_ConcurrentAppend(t *testing.T) {
	log := NewTagLog(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = log.Append("A", "tag")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, log.Len())
}

func TestNewTagLog_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxTags, NewTagLog(0).limit)
}

func TestWriteTagsCSV(t *testing.T) {
	log := NewTagLog(10)
	log.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	_, err := log.Append("BRAND A", "urgent")
	require.NoError(t, err)
	_, err = log.Append("ZETA", "follow up, Q3")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTagsCSV(&buf, log.Entries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Search Term", "New Tag", "Added At"},
		{"BRAND A", "urgent", "2024-05-01T12:00:00Z"},
		{"ZETA", "follow up, Q3", "2024-05-01T12:00:00Z"},
	}, records)
}

func TestWriteTagsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTagsCSV(&buf, nil))
	assert.Equal(t, "Search Term,New Tag,Added At\n", buf.String())
}
