package quality

import "salesetl/internal/diag"

// Summary holds the non-zero defect counts of one run.
type Summary struct {
	counts map[Category]int
}

// Count returns the count for c, zero when c had no defects.
func (s Summary) Count(c Category) int { return s.counts[c] }

// Counts returns a copy of the non-zero counts keyed by category name.
func (s Summary) Counts() map[string]int {
	out := make(map[string]int, len(s.counts))
	for c, n := range s.counts {
		out[string(c)] = n
	}
	return out
}

// Empty reports whether no detector found anything.
func (s Summary) Empty() bool { return len(s.counts) == 0 }

// Entry is one reported category.
type Entry struct {
	Category Category
	Count    int
}

// Entries returns the non-zero categories in detector order.
func (s Summary) Entries() []Entry {
	var out []Entry
	for _, c := range Categories() {
		if n := s.counts[c]; n > 0 {
			out = append(out, Entry{Category: c, Count: n})
		}
	}
	return out
}

func (s Summary) report(sink diag.Sink) {
	if s.Empty() {
		sink.Record(diag.LevelInfo, "no data quality issues found", nil)
		return
	}
	f := diag.Fields{}
	for _, e := range s.Entries() {
		f[string(e.Category)] = e.Count
	}
	sink.Record(diag.LevelInfo, "data quality issues summary", f)
	for _, e := range s.Entries() {
		sink.Record(diag.LevelInfo, "data quality issue", diag.Fields{
			"label": e.Category.Label(),
			"count": e.Count,
		})
	}
}
