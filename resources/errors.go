package resources

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownColumn is wrapped by every ColumnError
var ErrUnknownColumn = errors.New("unknown column")

// ColumnError reports a sort or filter key that is not a column of the report
type ColumnError struct {
	Column     string
	Columns    Columns
	Suggestion string
}

func newColumnError(column string, columns Columns) *ColumnError {
	return &ColumnError{
		Column:     column,
		Columns:    columns,
		Suggestion: suggestColumn(column, columns),
	}
}

func (e *ColumnError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s not valid (did you mean %q?)", e.Column, e.Suggestion)
	}
	return fmt.Sprintf("%s not valid (valid columns: %v)", e.Column, []string(e.Columns))
}

func (e *ColumnError) Unwrap() error {
	return ErrUnknownColumn
}

// suggestColumn returns the closest column within a third of the input's length
func suggestColumn(column string, columns Columns) string {
	best, bestDist := "", len(column)/3+1
	for _, c := range columns {
		if d := levenshtein.ComputeDistance(column, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
