package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpress-server/internal/content/usecases"
)

func TestParseListQuery_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries", nil)

	q := ParseListQuery(r)

	assert.Equal(t, usecases.StatePublished, q.State)
	assert.Empty(t, q.Locale)
	assert.Nil(t, q.Filter)
	assert.Nil(t, q.Pagination)
	assert.Nil(t, q.LimitOffset)
	assert.False(t, q.CountOnly)
}

func TestParseListQuery_NestedWhere(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries?where[price][gte]=10&where[title]=go&where[or][0][author][name][eq]=ada", nil)

	q := ParseListQuery(r)

	require.NotNil(t, q.Filter)
	assert.Equal(t, "go", q.Filter["title"])

	price, ok := q.Filter["price"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "10", price["gte"])

	or, ok := q.Filter["or"].(map[string]any)
	require.True(t, ok)
	chain := or["0"].(map[string]any)["author"].(map[string]any)["name"].(map[string]any)
	assert.Equal(t, "ada", chain["eq"])
}

func TestParseListQuery_MalformedWhereDropped(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries?where=broken&where[=x&whereabouts=1", nil)

	q := ParseListQuery(r)

	assert.Nil(t, q.Filter)
}

func TestParseListQuery_PageWinsOverLimitOffset(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries?page=3&limit=25&offset=99", nil)

	q := ParseListQuery(r)

	require.NotNil(t, q.Pagination)
	assert.Equal(t, 3, q.Pagination.Page)
	assert.Equal(t, 25, q.Pagination.Limit)
	assert.Nil(t, q.LimitOffset)
}

func TestParseListQuery_LimitOffset(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries?limit=7&offset=14", nil)

	q := ParseListQuery(r)

	assert.Nil(t, q.Pagination)
	require.NotNil(t, q.LimitOffset)
	assert.Equal(t, 7, q.LimitOffset.Limit)
	assert.Equal(t, 14, q.LimitOffset.Offset)
}

func TestParseListQuery_StateAndLocaleAndCount(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries?state=with_draft&locale=de&count=true&sort=price:desc,title", nil)

	q := ParseListQuery(r)

	assert.Equal(t, usecases.StateWithDraft, q.State)
	assert.Equal(t, "de", q.Locale)
	assert.True(t, q.CountOnly)
	assert.Equal(t, "price:desc,title", q.Sort)
}

func TestParseListQuery_UnknownStateFallsBackToPublished(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries?state=everything", nil)

	q := ParseListQuery(r)

	assert.Equal(t, usecases.StatePublished, q.State)
}
