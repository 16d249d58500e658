package pagination

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

func (d OrderDirection) reversed() OrderDirection {
	if d == OrderAsc {
		return OrderDesc
	}
	return OrderAsc
}

func (d OrderDirection) comparisonSign() string {
	if d == OrderAsc {
		return ">"
	}
	return "<"
}

// Options configures one Paginate call. NextCursor and PreviousCursor are
// mutually exclusive; both empty means the first page. KeyColumns must form
// a total order over the result set (typically a timestamp plus the primary
// key).
type Options[T any] struct {
	// Query is the filtered query source. Ordering and seek predicates are
	// added by Paginate.
	Query *gorm.DB

	KeyColumns     []string
	Order          OrderDirection
	NextCursor     string
	PreviousCursor string
	Take           int

	// CursorBuilder maps a result row to its key-column values, in the
	// same order as KeyColumns.
	CursorBuilder func(item T) []any
}

// Page is one page of results. An empty cursor string means there is no
// further page in that direction.
type Page[T any] struct {
	Data           []T    `json:"data"`
	NextCursor     string `json:"nextCursor"`
	PreviousCursor string `json:"previousCursor"`
}

// Paginate runs seek-method cursor pagination over the given query.
//
// When paging backward the query runs in the reversed direction so the rows
// immediately preceding the cursor are fetched efficiently; the page is
// then reversed back into logical order. Whether a previous/next page
// exists is decided by a select-one probe beyond each edge of the page, so
// the returned cursors are never dangling.
func Paginate[T any](ctx context.Context, opts Options[T]) (*Page[T], error) {
	if len(opts.KeyColumns) == 0 {
		return nil, errors.New("pagination requires at least one key column")
	}
	if opts.Take <= 0 {
		return nil, errors.New("pagination requires a positive take")
	}
	if opts.NextCursor != "" && opts.PreviousCursor != "" {
		return nil, fmt.Errorf("%w: next and previous cursors are mutually exclusive", ErrInvalidCursor)
	}
	if opts.Order == "" {
		opts.Order = OrderAsc
	}

	backward := opts.PreviousCursor != ""
	effectiveOrder := opts.Order
	if backward {
		effectiveOrder = effectiveOrder.reversed()
	}

	ordered := opts.Query.WithContext(ctx)
	for _, col := range opts.KeyColumns {
		ordered = ordered.Order(col + " " + string(effectiveOrder))
	}
	// Branch point shared by the page query and the existence probes; seek
	// predicates added below must not leak into the probes.
	ordered = ordered.Session(&gorm.Session{})

	pageQuery := ordered.Limit(opts.Take)

	cursor := opts.NextCursor
	if backward {
		cursor = opts.PreviousCursor
	}
	if cursor != "" {
		var err error
		pageQuery, err = seekWhere(pageQuery, opts.KeyColumns, cursor, effectiveOrder)
		if err != nil {
			return nil, err
		}
	}

	// Non-nil so an empty page marshals as "data": [].
	data := make([]T, 0, opts.Take)
	if err := pageQuery.Find(&data).Error; err != nil {
		return nil, err
	}

	if backward {
		// Rows were fetched in reverse; restore logical order.
		for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}

	page := &Page[T]{Data: data}
	if len(data) == 0 {
		return page, nil
	}

	previousCursor, err := EncodeCursor(opts.CursorBuilder(data[0]))
	if err != nil {
		return nil, err
	}
	nextCursor, err := EncodeCursor(opts.CursorBuilder(data[len(data)-1]))
	if err != nil {
		return nil, err
	}

	hasPrevious, err := exists[T](ordered, opts.KeyColumns, previousCursor, opts.Order.reversed())
	if err != nil {
		return nil, err
	}
	hasNext, err := exists[T](ordered, opts.KeyColumns, nextCursor, opts.Order)
	if err != nil {
		return nil, err
	}

	if hasPrevious {
		page.PreviousCursor = previousCursor
	}
	if hasNext {
		page.NextCursor = nextCursor
	}

	return page, nil
}

// exists reports whether at least one row lies beyond the cursor in the
// given direction.
func exists[T any](query *gorm.DB, keyColumns []string, cursor string, dir OrderDirection) (bool, error) {
	probe, err := seekWhere(query.Session(&gorm.Session{}), keyColumns, cursor, dir)
	if err != nil {
		return false, err
	}

	var rows []T
	if err := probe.Limit(1).Find(&rows).Error; err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// seekWhere adds the composite tuple-comparison predicate for the cursor:
// a lexicographic OR-chain where the first n-1 columns compare equal and
// the last column compares strictly, per OR branch.
func seekWhere(query *gorm.DB, keyColumns []string, cursor string, dir OrderDirection) (*gorm.DB, error) {
	values, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if len(values) != len(keyColumns) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidCursor, len(keyColumns), len(values))
	}

	sign := dir.comparisonSign()

	clauses := make([]string, 0, len(keyColumns))
	args := make([]any, 0, len(keyColumns)*(len(keyColumns)+1)/2)
	for i := range keyColumns {
		parts := make([]string, 0, i+1)
		for j := 0; j <= i; j++ {
			if j == i {
				parts = append(parts, fmt.Sprintf("%s %s ?", keyColumns[j], sign))
			} else {
				parts = append(parts, fmt.Sprintf("%s = ?", keyColumns[j]))
			}
			args = append(args, values[j])
		}
		clauses = append(clauses, "("+strings.Join(parts, " AND ")+")")
	}

	return query.Where(strings.Join(clauses, " OR "), args...), nil
}
