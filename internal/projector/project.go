// Package projector splits the working rows into the customers, products and
// transactions tables.
package projector

import (
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"salesetl/internal/records"
	"salesetl/internal/transformer/datestd"
)

// Projection is the three tables ready for loading. Customers and Products
// keep first-seen order.
type Projection struct {
	Customers    []records.Customer
	Products     []records.Product
	Transactions []records.Transaction
}

// Project derives the three tables. Customers are the distinct non-nil
// customer ids. Products are the distinct (id, name, category, price) tuples
// with a non-nil id. Every row becomes a transaction, flagged or not.
func Project(rows []records.WorkingRow) Projection {
	p := Projection{Transactions: make([]records.Transaction, 0, len(rows))}

	customers := make(map[string]struct{})
	products := newTupleSet()

	for _, r := range rows {
		if r.CustomerID != nil {
			if _, ok := customers[*r.CustomerID]; !ok {
				customers[*r.CustomerID] = struct{}{}
				p.Customers = append(p.Customers, records.Customer{CustomerID: *r.CustomerID})
			}
		}
		if r.ProductID != nil {
			prod := records.Product{
				ProductID:   *r.ProductID,
				ProductName: r.ProductName,
				Category:    r.Category,
				Price:       r.Price,
			}
			if products.add(productKey(prod)) {
				p.Products = append(p.Products, prod)
			}
		}
		p.Transactions = append(p.Transactions, transaction(r))
	}
	return p
}

func transaction(r records.WorkingRow) records.Transaction {
	t := records.Transaction{
		TransactionID:      r.TransactionID,
		CustomerID:         r.CustomerID,
		ProductID:          r.ProductID,
		Quantity:           r.Quantity,
		Date:               r.Date,
		Region:             r.Region,
		TotalValue:         r.TotalValue,
		HasMissingCustomer: r.Has(records.FlagMissingCustomer),
		HadNegativeQty:     r.Has(records.FlagNegativeQuantity),
		HadDateFormatIssue: r.Has(records.FlagDateFormatIssue),
		HasSuspicious:      r.Has(records.FlagSuspiciousValues),
	}
	if r.DateStd != nil {
		if d, err := time.Parse(datestd.Layout, *r.DateStd); err == nil {
			t.DateStd = &d
		}
	}
	return t
}

const (
	sep    = "\x1f"
	nilTag = "\x00"
)

// productKey joins the four tuple fields. nil is encoded apart from "" so
// two nil names compare equal to each other and unequal to an empty name.
func productKey(p records.Product) string {
	var b strings.Builder
	b.WriteString(p.ProductID)
	b.WriteString(sep)
	writeOpt(&b, p.ProductName)
	b.WriteString(sep)
	writeOpt(&b, p.Category)
	b.WriteString(sep)
	if p.Price == nil {
		b.WriteString(nilTag)
	} else {
		b.WriteString(strconv.FormatFloat(*p.Price, 'g', -1, 64))
	}
	return b.String()
}

func writeOpt(b *strings.Builder, s *string) {
	if s == nil {
		b.WriteString(nilTag)
		return
	}
	b.WriteString("=")
	b.WriteString(*s)
}

// tupleSet buckets keys by their xxh3 hash and compares full keys only
// within a bucket.
type tupleSet struct {
	buckets map[uint64][]string
}

func newTupleSet() *tupleSet { return &tupleSet{buckets: make(map[uint64][]string)} }

func (s *tupleSet) add(key string) bool {
	h := xxh3.HashString(key)
	for _, k := range s.buckets[h] {
		if k == key {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], key)
	return true
}
