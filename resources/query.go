package resources

import (
	"iter"
	"slices"
	"strings"
)

// Options are the sort and filter settings parsed from residual arguments
type Options struct {
	SortBy  string
	Filters map[string]string
	// Skipped lists bare words that matched no column
	Skipped []string
}

// ParseOptions reads residual command arguments against a report's columns.
// "-x" tokens are ignored, "column=value" adds an exact-match filter, a bare
// column name sets the sort key and any other word is skipped. A filter on an
// unknown column is an error.
func ParseOptions(args []string, columns Columns) (Options, error) {
	opts := Options{Filters: map[string]string{}}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if key, value, ok := strings.Cut(arg, "="); ok {
			if !columns.Has(key) {
				return Options{}, newColumnError(key, columns)
			}
			opts.Filters[key] = value
			continue
		}
		if columns.Has(arg) {
			opts.SortBy = arg
			continue
		}
		opts.Skipped = append(opts.Skipped, arg)
	}
	return opts, nil
}

// Query sorts, filters and projects the records of one report
type Query struct {
	Columns Columns
	Options Options
	// Project turns a surviving record into a row; defaults to Record.Project
	Project func(Record) Row
}

// Validate checks that every sort and filter key is a column
func (q Query) Validate() error {
	if q.Options.SortBy != "" && !q.Columns.Has(q.Options.SortBy) {
		return newColumnError(q.Options.SortBy, q.Columns)
	}
	for key := range q.Options.Filters {
		if !q.Columns.Has(key) {
			return newColumnError(key, q.Columns)
		}
	}
	return nil
}

// Run returns the rows for records in sort order. The input slice is not
// modified; projection happens lazily as the sequence is consumed.
func (q Query) Run(records []Record) (iter.Seq[Row], error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	project := q.Project
	if project == nil {
		project = func(r Record) Row { return r.Project(q.Columns) }
	}

	selected := slices.Clone(records)
	if q.Options.SortBy != "" {
		key := q.Options.SortBy
		slices.SortStableFunc(selected, func(a, b Record) int {
			return CompareValues(a.Get(key), b.Get(key))
		})
	}
	if len(q.Options.Filters) > 0 {
		selected = slices.DeleteFunc(selected, func(r Record) bool {
			return !q.matches(r)
		})
	}

	return func(yield func(Row) bool) {
		for _, r := range selected {
			if !yield(project(r)) {
				return
			}
		}
	}, nil
}

func (q Query) matches(r Record) bool {
	for key, want := range q.Options.Filters {
		if FormatValue(r.Get(key)) != want {
			return false
		}
	}
	return true
}
