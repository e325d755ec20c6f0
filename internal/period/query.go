package period

import "time"

// Query is a period selection as it arrives from a screen's filter bar.
// Zero fields are filled by WithDefaults.
type Query struct {
	Type  Type
	Month Month
	From  *Date
	To    *Date
}

// WithDefaults fills an empty type with DefaultType(today) and an empty
// reference month with the month of today.
func (q Query) WithDefaults(today time.Time) Query {
	if q.Type == "" {
		q.Type = DefaultType(today)
	}
	if q.Month == (Month{}) {
		q.Month = MonthOf(today)
	}
	return q
}

// Resolve resolves the query as it stands.
func (q Query) Resolve() (Resolved, error) {
	return Resolve(q.Type, q.Month, q.From, q.To)
}
