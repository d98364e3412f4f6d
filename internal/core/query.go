// AngelaMos | 2026
// query.go

package core

import (
	"strconv"
	"strings"
)

// Filter accumulates AND-ed WHERE conditions for Postgres. Each "?" in a
// condition is bound to the value passed with it, so a condition may
// reference its argument more than once.
type Filter struct {
	conds []string
	args  []any
}

// Where adds cond bound to arg.
func (f *Filter) Where(cond string, arg any) *Filter {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", f.placeholder()))
	return f
}

// WhereIf adds cond only when ok holds.
func (f *Filter) WhereIf(ok bool, cond string, arg any) *Filter {
	if ok {
		f.Where(cond, arg)
	}
	return f
}

// Contains adds a substring match of s against cond's placeholder. Empty
// s adds nothing.
func (f *Filter) Contains(cond, s string) *Filter {
	return f.WhereIf(s != "", cond, "%"+EscapeLike(s)+"%")
}

// SQL returns the combined condition, "TRUE" when nothing was added.
func (f *Filter) SQL() string {
	if len(f.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(f.conds, " AND ")
}

func (f *Filter) Args() []any {
	return f.args
}

// Page returns a LIMIT/OFFSET clause and the arguments for a query built
// from SQL. The filter itself is left unchanged.
func (f *Filter) Page(limit, offset int) (string, []any) {
	n := len(f.args)
	clause := "LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)

	args := make([]any, 0, n+2)
	args = append(args, f.args...)
	return clause, append(args, limit, offset)
}

func (f *Filter) placeholder() string {
	return "$" + strconv.Itoa(len(f.args))
}
