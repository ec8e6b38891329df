package paging

// Strategy is a paging termination policy.
type Strategy string

const (
	// StrategyAll fetches every page from offset 0 to the total count.
	StrategyAll Strategy = "all"

	// StrategyCountPages fetches at most PageCount pages from offset 0.
	StrategyCountPages Strategy = "count_pages"

	// StrategyFromOffset fetches every page from the requested offset.
	StrategyFromOffset Strategy = "from_offset"

	// StrategyFromOffsetCountPages fetches at most PageCount pages from the
	// requested offset.
	StrategyFromOffsetCountPages Strategy = "from_offset_count_pages"

	// StrategyRowLimit fetches from offset 0 until RowCount rows are covered.
	StrategyRowLimit Strategy = "row_limit"

	// StrategyFromOffsetRowLimit fetches from the requested offset until
	// RowCount rows are covered.
	StrategyFromOffsetRowLimit Strategy = "from_offset_row_limit"
)

// limitKind is the count restriction that applies to a run.
type limitKind int

const (
	limitNone limitKind = iota
	limitPages
	limitRows
)

// strategyTable maps (offset present, limit kind) to a strategy. Row counts
// take precedence over page counts before the lookup.
var strategyTable = map[bool]map[limitKind]Strategy{
	false: {
		limitNone:  StrategyAll,
		limitPages: StrategyCountPages,
		limitRows:  StrategyRowLimit,
	},
	true: {
		limitNone:  StrategyFromOffset,
		limitPages: StrategyFromOffsetCountPages,
		limitRows:  StrategyFromOffsetRowLimit,
	},
}

// SelectStrategy picks the strategy from which optional parameters were
// supplied.
func SelectStrategy(offsetPresent, pageCountPresent, rowCountPresent bool) Strategy {
	limit := limitNone
	switch {
	case rowCountPresent:
		limit = limitRows
	case pageCountPresent:
		limit = limitPages
	}
	return strategyTable[offsetPresent][limit]
}

// StrategyFor selects the strategy for a request.
func StrategyFor(r Request) Strategy {
	_, offset := r.Offset()
	_, pages := r.PageCount()
	_, rows := r.RowCount()
	return SelectStrategy(offset, pages, rows)
}

// FromOffset reports whether s starts at a caller supplied offset.
func (s Strategy) FromOffset() bool {
	switch s {
	case StrategyFromOffset, StrategyFromOffsetCountPages, StrategyFromOffsetRowLimit:
		return true
	}
	return false
}

// RowLimited reports whether s stops after a row count.
func (s Strategy) RowLimited() bool {
	return s == StrategyRowLimit || s == StrategyFromOffsetRowLimit
}

// PageLimited reports whether s stops after a page count.
func (s Strategy) PageLimited() bool {
	return s == StrategyCountPages || s == StrategyFromOffsetCountPages
}
