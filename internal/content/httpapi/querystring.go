package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"fieldpress-server/internal/content/usecases"
	"fieldpress-server/internal/infra/httpserver"
)

// ParseListQuery reads a list request's query string into a ListQuery.
// Filters use bracket syntax (where[price][gte]=10, where[or][0][...]=...),
// sorting a comma-separated spec (sort=price:desc,title). page/limit win
// over limit/offset when both appear; count=true asks for a cardinality
// only.
func ParseListQuery(r *http.Request) usecases.ListQuery {
	values := r.URL.Query()

	q := usecases.ListQuery{
		State:  parseState(values.Get("state")),
		Locale: values.Get("locale"),
		Sort:   values.Get("sort"),
		Filter: parseWhere(values),
	}

	if values.Get("count") == "true" {
		q.CountOnly = true
	}

	if values.Has("page") {
		params := httpserver.ExtractPaginationParams(r)
		q.Pagination = &usecases.Pagination{Page: params.Page, Limit: params.Limit}
		return q
	}

	limit, hasLimit := parseInt(values.Get("limit"))
	offset, hasOffset := parseInt(values.Get("offset"))
	if hasLimit || hasOffset {
		q.LimitOffset = &usecases.LimitOffset{Limit: limit, Offset: offset}
	}

	return q
}

func parseState(raw string) usecases.StateScope {
	switch usecases.StateScope(raw) {
	case usecases.StateOnlyDraft:
		return usecases.StateOnlyDraft
	case usecases.StateWithDraft:
		return usecases.StateWithDraft
	default:
		return usecases.StatePublished
	}
}

// parseWhere folds every where[...] parameter into one nested filter tree.
// The last value wins when a key repeats.
func parseWhere(values map[string][]string) map[string]any {
	filter := make(map[string]any)

	for key, vals := range values {
		path, ok := bracketPath(key)
		if !ok || len(vals) == 0 {
			continue
		}
		insertPath(filter, path, vals[len(vals)-1])
	}

	if len(filter) == 0 {
		return nil
	}
	return filter
}

// bracketPath splits "where[a][b][c]" into its segments. Anything not
// shaped that way is not a filter parameter.
func bracketPath(key string) ([]string, bool) {
	if !strings.HasPrefix(key, "where[") {
		return nil, false
	}

	rest := key[len("where"):]
	var path []string
	for rest != "" {
		if !strings.HasPrefix(rest, "[") {
			return nil, false
		}
		end := strings.Index(rest, "]")
		if end < 1 {
			return nil, false
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}

	return path, len(path) > 0
}

func insertPath(node map[string]any, path []string, value string) {
	if len(path) == 1 {
		node[path[0]] = value
		return
	}

	child, ok := node[path[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		node[path[0]] = child
	}
	insertPath(child, path[1:], value)
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}
