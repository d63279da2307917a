package store

import (
	"fmt"
	"strings"
	"time"
)

// Filter selects rows for Query. Nil fields match everything.
type Filter struct {
	UserID   *string
	Hostname *string
	Workflow *string
	Tag      *string
	Stage    *string
	Comment  *string

	StageNumber *int
	Iteration   *int
	Flag        *int

	// Since is inclusive and Until exclusive, on the event date_time.
	Since *time.Time
	Until *time.Time

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// IsZero reports whether f matches every row without a limit.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// build renders the WHERE, ORDER BY and LIMIT clauses for d along with the
// bind arguments. Values never appear in the returned SQL text.
func (f Filter) build(d dialect) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(expr string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(expr, d.placeholder(len(args))))
	}

	strs := []struct {
		col string
		v   *string
	}{
		{"user_id", f.UserID},
		{"hostname", f.Hostname},
		{"workflow", f.Workflow},
		{"tag", f.Tag},
		{"stage", f.Stage},
		{"comment", f.Comment},
	}
	for _, s := range strs {
		if s.v != nil {
			add(s.col+" = %s", *s.v)
		}
	}

	ints := []struct {
		col string
		v   *int
	}{
		{"stage_number", f.StageNumber},
		{"iteration", f.Iteration},
		{"flag", f.Flag},
	}
	for _, n := range ints {
		if n.v != nil {
			add(n.col+" = %s", *n.v)
		}
	}

	if f.Since != nil {
		add("date_time >= %s", d.timeValue(*f.Since))
	}
	if f.Until != nil {
		add("date_time < %s", d.timeValue(*f.Until))
	}

	var sb strings.Builder
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}
	sb.WriteString(" ORDER BY date_time, id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(" LIMIT ")
		sb.WriteString(d.placeholder(len(args)))
	}
	return sb.String(), args
}
