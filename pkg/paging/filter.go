package paging

import (
	"net/url"
	"sort"
)

// FilterKind identifies how a filter payload travels to the server.
type FilterKind string

const (
	// FilterNone means no filter.
	FilterNone FilterKind = ""

	// FilterCriteria is a criteria expression sent as the "criteria" query param.
	FilterCriteria FilterKind = "criteria"

	// FilterNamedQuery is a named-query expression sent under the query's name.
	FilterNamedQuery FilterKind = "named_query"

	// FilterMap is a plain key/value filter, one query param per pair.
	FilterMap FilterKind = "map"

	// FilterQueryAPI is a free-form body POSTed to the query API.
	FilterQueryAPI FilterKind = "query_api"
)

// Filter is an opaque, pre-encoded filter payload. The paging engine passes
// it through unmodified.
type Filter struct {
	Kind FilterKind

	// Name is the query parameter name for named queries.
	Name string

	// Encoded is the payload: a JSON expression, an encoded query string
	// for map filters, or a request body for the query API.
	Encoded string
}

// CriteriaFilter wraps a criteria JSON expression.
func CriteriaFilter(criteriaJSON string) Filter {
	return Filter{Kind: FilterCriteria, Name: "criteria", Encoded: criteriaJSON}
}

// NamedQueryFilter wraps a named-query JSON expression.
func NamedQueryFilter(name, queryJSON string) Filter {
	return Filter{Kind: FilterNamedQuery, Name: name, Encoded: queryJSON}
}

// MapFilter encodes a key/value map. Keys are sorted so identical maps
// always produce identical URLs.
func MapFilter(m map[string]string) Filter {
	if len(m) == 0 {
		return Filter{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Add(k, m[k])
	}
	return Filter{Kind: FilterMap, Encoded: values.Encode()}
}

// QueryAPIFilter wraps a free-form query API request body.
func QueryAPIFilter(body string) Filter {
	return Filter{Kind: FilterQueryAPI, Encoded: body}
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.Kind == FilterNone || f.Encoded == ""
}

// apply merges URL-borne filters into values. Query API bodies are left to
// the transport.
func (f Filter) apply(values url.Values) error {
	if f.IsZero() {
		return nil
	}
	switch f.Kind {
	case FilterCriteria, FilterNamedQuery:
		values.Set(f.Name, f.Encoded)
	case FilterMap:
		parsed, err := url.ParseQuery(f.Encoded)
		if err != nil {
			return err
		}
		for k, vs := range parsed {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	}
	return nil
}
