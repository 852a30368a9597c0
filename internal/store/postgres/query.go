package postgres

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// listClause appends the time window, ordering and paging of opts to a query
// whose WHERE clause already holds len(args) placeholders. tsCol is the
// timestamp column filtered and ordered on.
func listClause(opts domain.ListOpts, tsCol string, args []any) (string, []any) {
	var b strings.Builder
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Since != nil {
		fmt.Fprintf(&b, " AND %s >= %s", tsCol, next(*opts.Since))
	}
	if opts.Until != nil {
		fmt.Fprintf(&b, " AND %s <= %s", tsCol, next(*opts.Until))
	}
	fmt.Fprintf(&b, " ORDER BY %s DESC", tsCol)
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %s", next(opts.Limit))
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %s", next(opts.Offset))
	}
	return b.String(), args
}
