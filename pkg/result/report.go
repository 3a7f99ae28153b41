// Package result ranks counted k-mers and renders the frequency report.
package result

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/oisee/knucleotide/pkg/count"
	"github.com/oisee/knucleotide/pkg/nucleo"
	"github.com/pkg/errors"
)

// Literal is the count of one queried k-mer.
type Literal struct {
	Kmer  string `json:"kmer"`
	Count uint32 `json:"count"`
}

// Report is the full output of one run.
type Report struct {
	Length   int       `json:"length"`
	Tables   []Table   `json:"frequencies"`
	Literals []Literal `json:"literals"`
}

// Build ranks the frequency tables for each k in ks and looks up each
// literal, in request order. Literals are looked up read-only; a literal
// never observed reports 0.
func Build(f *count.Frequencies, ks []int, literals []string) (*Report, error) {
	r := &Report{Length: f.Length}
	for _, k := range ks {
		r.Tables = append(r.Tables, NewTable(f.Map(k), k, f.Windows(k)))
	}
	for _, lit := range literals {
		key, err := nucleo.KeyOf(lit)
		if err != nil {
			return nil, err
		}
		if !f.Has(len(lit)) {
			return nil, errors.Errorf("result: k=%d was not counted for literal %q", len(lit), lit)
		}
		r.Literals = append(r.Literals, Literal{Kmer: lit, Count: f.Count(key, len(lit))})
	}
	return r, nil
}

// WriteText renders the report: each frequency table as "<kmer> <percent>"
// lines followed by a blank line, then one "<count>\t<kmer>" line per
// literal.
func WriteText(w io.Writer, r *Report) error {
	bw := &errWriter{w: w}
	for _, t := range r.Tables {
		for _, row := range t.Rows {
			bw.printf("%s %.3f\n", row.Kmer, row.Percent)
		}
		bw.printf("\n")
	}
	for _, l := range r.Literals {
		bw.printf("%d\t%s\n", l.Count, l.Kmer)
	}
	return errors.Wrap(bw.err, "writing report")
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// WriteJSON stores the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "encoding report")
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, errors.Wrap(err, "decoding report")
	}
	return &rep, nil
}

// Verify checks a report's internal consistency: every table's counts add
// up to its window count, which must match the sequence length, and its
// percentages add up to 100.
func Verify(r *Report) []error {
	var errs []error
	for _, t := range r.Tables {
		if want := count.Windows(r.Length, t.K); t.Windows != want {
			errs = append(errs, errors.Errorf("k=%d: %d windows, want %d for length %d", t.K, t.Windows, want, r.Length))
		}
		if total := t.Total(); total != uint64(t.Windows) {
			errs = append(errs, errors.Errorf("k=%d: counts sum to %d, want %d", t.K, total, t.Windows))
		}
		var pct float64
		for i, row := range t.Rows {
			if len(row.Kmer) != t.K {
				errs = append(errs, errors.Errorf("k=%d: row %d has k-mer %q", t.K, i, row.Kmer))
			}
			if i > 0 && row.Count > t.Rows[i-1].Count {
				errs = append(errs, errors.Errorf("k=%d: row %d out of order", t.K, i))
			}
			pct += row.Percent
		}
		if t.Windows > 0 && math.Abs(pct-100) > 1e-6 {
			errs = append(errs, errors.Errorf("k=%d: percentages sum to %.6f", t.K, pct))
		}
	}
	for _, l := range r.Literals {
		if _, err := nucleo.KeyOf(l.Kmer); err != nil {
			errs = append(errs, err)
		}
		if uint64(l.Count) > uint64(count.Windows(r.Length, len(l.Kmer))) {
			errs = append(errs, errors.Errorf("literal %s: count %d exceeds window count", l.Kmer, l.Count))
		}
	}
	return errs
}
