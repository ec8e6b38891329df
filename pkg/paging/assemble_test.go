package paging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowStrings_CompactsElements(t *testing.T) {
	plan := &Plan{
		Strategy: StrategyAll,
		Discovery: &Response{
			Content: "[ {\"id\": 1,\n \"tags\": [ \"a\" ]}, {\"id\":2} ]",
		},
		RowCount: unset,
	}

	rows, err := RowStrings(plan, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{`{"id":1,"tags":["a"]}`, `{"id":2}`}, rows)
}

func TestRowRecords_KeepsNumbers(t *testing.T) {
	plan := &Plan{
		Strategy:  StrategyAll,
		Discovery: &Response{Content: `[{"id":9007199254740993}]`},
		RowCount:  unset,
	}

	records, err := RowRecords(plan, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record, ok := records[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), record["id"])
}

func TestPageRecords_ParseFailure(t *testing.T) {
	plan := &Plan{
		Strategy:  StrategyAll,
		Discovery: &Response{Content: `[{"id":1}`, RequestedURL: "https://ethos.test/api/persons"},
		RowCount:  unset,
	}

	_, err := PageRecords(plan, nil)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "page record", parseErr.Op)
	assert.Contains(t, err.Error(), "https://ethos.test/api/persons")
}

func TestPageRecords_OneRecordPerPage(t *testing.T) {
	srv := newFakeServer(30, 10)

	records, err := newTestPipeline(srv).PageRecords(context.Background(), NewRequest("persons"))
	require.NoError(t, err)

	require.Len(t, records, 3)
	page, ok := records[2].([]any)
	require.True(t, ok)
	assert.Len(t, page, 10)
}

func TestPageStrings_PassThrough(t *testing.T) {
	srv := newFakeServer(20, 10)

	pages, err := newTestPipeline(srv).PageStrings(context.Background(), NewRequest("persons"))
	require.NoError(t, err)

	assert.Equal(t, []string{rowsBody(0, 10), rowsBody(10, 20)}, pages)
}

func TestPages_RowLimitTrimsLastPage(t *testing.T) {
	srv := newFakeServer(100, 50)
	req := NewRequest("persons", WithPageSize(30), WithOffset(20), WithRowCount(40))

	pages, err := newTestPipeline(srv).Pages(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, rowsBody(20, 50), pages[0].Content)
	assert.Equal(t, rowsBody(50, 60), pages[1].Content)
	assert.Contains(t, pages[1].RequestedURL, "offset=50")
}

func TestShortcut_InitialResponseSlicedFromOffset(t *testing.T) {
	srv := newFakeServer(100, 100)
	initial := &Response{
		Headers:      map[string]string{HeaderTotalCount: "100", HeaderMaxPageSize: "100"},
		Content:      rowsBody(0, 100),
		StatusCode:   200,
		RequestedURL: "https://ethos.test/api/persons?limit=100&offset=0",
	}
	req := NewRequest("persons",
		WithOffset(5),
		WithRowCount(10),
		WithInitialResponse(initial),
	)

	rows, err := newTestPipeline(srv).RowStrings(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, rowRange(5, 15), rows)
	assert.Equal(t, 0, srv.calls())
	assert.Equal(t, rowsBody(0, 100), initial.Content, "initial response is not mutated")
}

func TestShortcut_FromOffsetWithoutRowLimit(t *testing.T) {
	initial := &Response{
		Headers:      map[string]string{HeaderTotalCount: "20"},
		Content:      rowsBody(0, 20),
		RequestedURL: "https://ethos.test/api/persons",
	}
	plan := resolve(t, newFakeServer(20, 0), NewRequest("persons", WithOffset(15), WithInitialResponse(initial)))

	pages, err := Pages(plan, nil)
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, rowsBody(15, 20), pages[0].Content)
	assert.NotSame(t, initial, pages[0])
}

func TestRows_EmptyBody(t *testing.T) {
	plan := &Plan{Strategy: StrategyRowLimit, RowCount: 5, Discovery: &Response{}}

	rows, err := RowStrings(plan, nil)
	require.NoError(t, err)

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
