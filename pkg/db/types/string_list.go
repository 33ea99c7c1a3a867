package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is an ordered list of strings stored as a Postgres text[] column.
// Other dialects keep the same array literal in a text column.
type StringList []string

// ParseStringList splits comma separated input, trimming blanks and empty entries.
func ParseStringList(raw string) StringList {
	out := StringList{}
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether value is one of the entries.
func (l StringList) Contains(value string) bool {
	for _, v := range l {
		if v == value {
			return true
		}
	}
	return false
}

// String renders the list the way operators type it.
func (l StringList) String() string {
	return strings.Join(l, ",")
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	*l = StringList(arr)
	return nil
}

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db != nil && db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
