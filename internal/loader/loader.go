// Package loader writes a projection to the store in dependency order:
// customers, then products, then transactions.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesetl/internal/diag"
	"salesetl/internal/projector"
	"salesetl/internal/records"
	"salesetl/internal/schema"
	"salesetl/internal/storage"
)

// DefaultBatchSize is used when Loader.BatchSize is unset.
const DefaultBatchSize = 1000

// Loader writes projections through Repo.
type Loader struct {
	Repo      storage.Repository
	BatchSize int
	Sink      diag.Sink

	// ClearBeforeLoad deletes existing rows from the three tables first.
	ClearBeforeLoad bool
	// Transactional runs the clear and every table write in one transaction.
	// Without it, chunks that were written before a failure stay written.
	Transactional bool
}

// TableReport is the outcome for one table.
type TableReport struct {
	Table   string
	Rows    int64
	Batches int
	Elapsed time.Duration
}

// Report is the outcome of Load. Tables holds one entry per table attempted.
type Report struct {
	Cleared bool
	Tables  []TableReport
}

// Rows returns the rows written to table, or 0.
func (r Report) Rows(table string) int64 {
	for _, t := range r.Tables {
		if t.Table == table {
			return t.Rows
		}
	}
	return 0
}

type table struct {
	name    string
	columns []string
	rows    [][]any
}

func tables(p projector.Projection) []table {
	out := []table{
		{name: schema.Customers, columns: records.CustomerColumns, rows: make([][]any, len(p.Customers))},
		{name: schema.Products, columns: records.ProductColumns, rows: make([][]any, len(p.Products))},
		{name: schema.Transactions, columns: records.TransactionColumns, rows: make([][]any, len(p.Transactions))},
	}
	for i, c := range p.Customers {
		out[0].rows[i] = c.Values()
	}
	for i, pr := range p.Products {
		out[1].rows[i] = pr.Values()
	}
	for i, t := range p.Transactions {
		out[2].rows[i] = t.Values()
	}
	return out
}

// Load writes p. The first failing chunk stops the load and is returned
// wrapped with its table name.
func (l *Loader) Load(ctx context.Context, p projector.Projection) (Report, error) {
	if l.Repo == nil {
		return Report{}, errors.New("loader: nil repository")
	}
	if !l.Transactional {
		return l.load(ctx, l.Repo, tables(p))
	}

	var rep Report
	err := l.Repo.InTx(ctx, func(w storage.Writer) error {
		var err error
		rep, err = l.load(ctx, w, tables(p))
		return err
	})
	if err != nil {
		l.sink().Record(diag.LevelError, "load rolled back", diag.Fields{"error": err.Error()})
	}
	return rep, err
}

func (l *Loader) load(ctx context.Context, w storage.Writer, ts []table) (Report, error) {
	var rep Report
	sink := l.sink()

	if l.ClearBeforeLoad {
		if err := clearTables(ctx, w, l.Repo.Dialect()); err != nil {
			return rep, err
		}
		rep.Cleared = true
		sink.Record(diag.LevelInfo, "tables cleared", nil)
	}

	size := l.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for _, t := range ts {
		tableSink := diag.With(sink, diag.Fields{"table": t.name})
		if len(t.rows) == 0 {
			tableSink.Record(diag.LevelWarn, "no rows to load", nil)
			continue
		}
		name := t.name
		st, err := storage.LoadBatches(ctx, t.columns, t.rows, size,
			func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
				return w.CopyFrom(ctx, name, columns, rows)
			}, tableSink)
		rep.Tables = append(rep.Tables, TableReport{Table: t.name, Rows: st.Rows, Batches: st.Batches, Elapsed: st.Elapsed})
		if err != nil {
			return rep, fmt.Errorf("load %s: %w", t.name, err)
		}
		tableSink.Record(diag.LevelInfo, "table loaded", diag.Fields{
			"rows":    st.Rows,
			"batches": st.Batches,
			"elapsed": st.Elapsed.Truncate(time.Millisecond).String(),
		})
	}
	return rep, nil
}

// clearTables deletes children before parents so foreign keys hold throughout.
func clearTables(ctx context.Context, w storage.Writer, d storage.Dialect) error {
	for _, name := range []string{schema.Transactions, schema.Products, schema.Customers} {
		if err := w.Exec(ctx, "DELETE FROM "+d.QuoteIdent(name)); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}

func (l *Loader) sink() diag.Sink {
	if l.Sink == nil {
		return diag.Discard
	}
	return l.Sink
}
