package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageFirstOfMany(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	p := NewPage(rows, 1, 50, "/api/tasks")

	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 10, p.LastPage)
	assert.Equal(t, 5, p.PerPage)
	assert.Equal(t, 50, p.Total)
	require.NotNil(t, p.From)
	require.NotNil(t, p.To)
	assert.Equal(t, 1, *p.From)
	assert.Equal(t, 5, *p.To)
	assert.Nil(t, p.PrevPageURL)
	require.NotNil(t, p.NextPageURL)
	assert.Equal(t, "/api/tasks?page=2", *p.NextPageURL)
}

func TestNewPageMiddle(t *testing.T) {
	rows := []int{16, 17, 18, 19, 20}
	p := NewPage(rows, 4, 50, "/api/tasks")

	require.NotNil(t, p.From)
	assert.Equal(t, 16, *p.From)
	assert.Equal(t, 20, *p.To)
	require.NotNil(t, p.PrevPageURL)
	assert.Equal(t, "/api/tasks?page=3", *p.PrevPageURL)
	require.NotNil(t, p.NextPageURL)
	assert.Equal(t, "/api/tasks?page=5", *p.NextPageURL)
}

func TestNewPageLastShort(t *testing.T) {
	// 12 rows total: page 3 holds only 2.
	rows := []int{11, 12}
	p := NewPage(rows, 3, 12, "/api/users")

	assert.Equal(t, 3, p.LastPage)
	require.NotNil(t, p.From)
	assert.Equal(t, 11, *p.From)
	assert.Equal(t, 12, *p.To)
	assert.Nil(t, p.NextPageURL)
	require.NotNil(t, p.PrevPageURL)
	assert.Equal(t, "/api/users?page=2", *p.PrevPageURL)
}

func TestNewPageEmpty(t *testing.T) {
	p := NewPage[int](nil, 1, 0, "/api/tasks")

	assert.Equal(t, 0, p.LastPage)
	assert.Nil(t, p.From)
	assert.Nil(t, p.To)
	assert.Nil(t, p.PrevPageURL)
	assert.Nil(t, p.NextPageURL)
	assert.NotNil(t, p.Data, "data must serialize as [], never null")
	assert.Equal(t, 0, p.Total)
}

func TestNewPagePastEnd(t *testing.T) {
	p := NewPage[int](nil, 9, 12, "/api/tasks")

	assert.Equal(t, 9, p.CurrentPage)
	assert.Equal(t, 3, p.LastPage)
	assert.Nil(t, p.From)
	assert.Nil(t, p.To)
	assert.Nil(t, p.NextPageURL)
	require.NotNil(t, p.PrevPageURL, "prev link still offered past the end")
}

func TestPageJSONShape(t *testing.T) {
	out, err := json.Marshal(NewPage[string](nil, 1, 0, "/api/users"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"current_page": 1,
		"data": [],
		"from": null,
		"last_page": 0,
		"next_page_url": null,
		"path": "/api/users",
		"per_page": 5,
		"prev_page_url": null,
		"to": null,
		"total": 0
	}`, string(out))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, PageOffset(0))
	assert.Equal(t, 0, PageOffset(1))
	assert.Equal(t, 5, PageOffset(2))
	assert.Equal(t, 45, PageOffset(10))
}
