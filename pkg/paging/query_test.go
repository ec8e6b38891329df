package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageQuery_Params(t *testing.T) {
	tests := []struct {
		name     string
		query    PageQuery
		expected map[string]string
	}{
		{
			name:     "offset zero is sent, limit zero is not",
			query:    PageQuery{Resource: "persons", Offset: 0, Limit: 0},
			expected: map[string]string{"offset": "0"},
		},
		{
			name:     "negative offset omitted",
			query:    PageQuery{Resource: "persons", Offset: -1, Limit: 25},
			expected: map[string]string{"limit": "25"},
		},
		{
			name:  "criteria filter merged",
			query: PageQuery{Resource: "persons", Offset: 10, Limit: 5, Filter: CriteriaFilter(`{"code":"x"}`)},
			expected: map[string]string{
				"offset":   "10",
				"limit":    "5",
				"criteria": `{"code":"x"}`,
			},
		},
		{
			name:  "named query filter",
			query: PageQuery{Resource: "sections", Offset: 0, Filter: NamedQueryFilter("keywordSearch", `{"keywordSearch":"math"}`)},
			expected: map[string]string{
				"offset":        "0",
				"keywordSearch": `{"keywordSearch":"math"}`,
			},
		},
		{
			name:  "map filter",
			query: PageQuery{Resource: "persons", Offset: 0, Filter: MapFilter(map[string]string{"lastName": "Smith", "role": "student"})},
			expected: map[string]string{
				"offset":   "0",
				"lastName": "Smith",
				"role":     "student",
			},
		},
		{
			name:     "query api body stays out of the URL",
			query:    PageQuery{Resource: "persons", Offset: 0, Limit: 3, Filter: QueryAPIFilter(`{"names":[]}`)},
			expected: map[string]string{"offset": "0", "limit": "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := tt.query.Params()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestMapFilter_Deterministic(t *testing.T) {
	m := map[string]string{"b": "2", "a": "1", "c": "3"}
	assert.Equal(t, "a=1&b=2&c=3", MapFilter(m).Encoded)
	assert.True(t, MapFilter(nil).IsZero())
}

func TestResponse_Header(t *testing.T) {
	resp := &Response{Headers: map[string]string{HeaderTotalCount: "42"}}

	v, ok := resp.Header(HeaderTotalCount)
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = resp.Header("X-Total-Count")
	assert.False(t, ok, "lookup is exact")

	var nilResp *Response
	_, ok = nilResp.Header(HeaderTotalCount)
	assert.False(t, ok)
}

func TestRequest_Defaults(t *testing.T) {
	req := NewRequest("persons")

	assert.Equal(t, DefaultVersion, req.Version())
	_, ok := req.Offset()
	assert.False(t, ok)
	_, ok = req.PageSize()
	assert.False(t, ok)
	_, ok = req.PageCount()
	assert.False(t, ok)
	_, ok = req.RowCount()
	assert.False(t, ok)
	assert.Nil(t, req.InitialResponse())

	req = NewRequest("persons", WithVersion("application/vnd.hedtech.integration.v12+json"), WithPageSize(0))
	assert.Equal(t, "application/vnd.hedtech.integration.v12+json", req.Version())
	_, ok = req.PageSize()
	assert.False(t, ok, "zero page size defers to the server")
}
