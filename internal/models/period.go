package models

import (
	"database/sql/driver"
	"fmt"
	"sort"

	"github.com/lib/pq"
)

// MaxPeriod is the last of the fixed event time slots, numbered from 1.
const MaxPeriod = 3

// Periods is a set of event time slots stored as an INT[] column.
type Periods []int

// Value implements driver.Valuer.
func (p Periods) Value() (driver.Value, error) {
	raw := make(pq.Int64Array, 0, len(p))
	for _, v := range p {
		raw = append(raw, int64(v))
	}
	return raw.Value()
}

// Scan implements sql.Scanner.
func (p *Periods) Scan(src interface{}) error {
	var raw pq.Int64Array
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan periods: %w", err)
	}
	out := make(Periods, 0, len(raw))
	for _, v := range raw {
		out = append(out, int(v))
	}
	*p = out
	return nil
}

// Normalize returns a sorted copy with duplicates removed.
func (p Periods) Normalize() Periods {
	seen := make(map[int]struct{}, len(p))
	out := make(Periods, 0, len(p))
	for _, v := range p {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Equal reports set equality, ignoring order and duplicates.
func (p Periods) Equal(other Periods) bool {
	a, b := p.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Contains reports whether period is in the set.
func (p Periods) Contains(period int) bool {
	for _, v := range p {
		if v == period {
			return true
		}
	}
	return false
}
