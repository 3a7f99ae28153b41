package result

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ledgerwatch/log/v3"
	"github.com/oisee/knucleotide/pkg/count"
	"github.com/oisee/knucleotide/pkg/kmap"
	"github.com/oisee/knucleotide/pkg/nucleo"
)

func run(t *testing.T, seq string, ks []int) *count.Frequencies {
	t.Helper()
	l := log.New()
	l.SetHandler(log.DiscardHandler())
	return count.Run(nucleo.Encode([]byte(seq)), count.Config{KValues: ks, NumWorkers: 2, Logger: l})
}

func TestWriteText(t *testing.T) {
	f := run(t, "ACGTACGTAA", []int{1, 2, 3, 4})
	rep, err := Build(f, []int{1, 2}, []string{"ACG", "TTTT", "CGTA"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, rep); err != nil {
		t.Fatal(err)
	}
	// k=1: A=4 C=2 G=2 T=2 over 10 windows.
	// k=2: AC=2 CG=2 GT=2 TA=2 AA=1 over 9 windows.
	want := "A 40.000\nC 20.000\nG 20.000\nT 20.000\n\n" +
		"AC 22.222\nCG 22.222\nGT 22.222\nTA 22.222\nAA 11.111\n\n" +
		"2\tACG\n0\tTTTT\n2\tCGTA\n"
	if buf.String() != want {
		t.Errorf("report mismatch\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	f := run(t, "", []int{1, 2, 3})
	rep, err := Build(f, []int{1, 2}, []string{"GGT"})
	if err != nil {
		t.Fatal(err)
	}
	for _, tab := range rep.Tables {
		if len(tab.Rows) != 0 || tab.Windows != 0 {
			t.Errorf("k=%d: rows on empty input", tab.K)
		}
	}
	if rep.Literals[0].Count != 0 {
		t.Errorf("GGT = %d on empty input", rep.Literals[0].Count)
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, rep); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\n0\tGGT\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestBuildLiteralDoesNotInsert(t *testing.T) {
	f := run(t, "ACGTACGT", []int{3})
	before := f.Map(3).Len()
	rep, err := Build(f, nil, []string{"TTT"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Literals[0].Count != 0 {
		t.Errorf("TTT = %d, want 0", rep.Literals[0].Count)
	}
	if f.Map(3).Len() != before {
		t.Error("literal lookup inserted into the map")
	}
}

func TestBuildErrors(t *testing.T) {
	f := run(t, "ACGT", []int{1})
	if _, err := Build(f, nil, []string{"GG"}); err == nil {
		t.Error("uncounted k accepted")
	}
	if _, err := Build(f, nil, []string{"N"}); err == nil {
		t.Error("illegal base accepted")
	}
}

func TestPercentGuard(t *testing.T) {
	if p := Percent(3, 0); p != 0 {
		t.Errorf("Percent(3, 0) = %v", p)
	}
	if p := Percent(1, -2); p != 0 {
		t.Errorf("Percent(1, -2) = %v", p)
	}
	if p := Percent(1, 4); p != 25 {
		t.Errorf("Percent(1, 4) = %v", p)
	}
}

func TestNewTableOrder(t *testing.T) {
	m := kmap.New(0)
	for _, s := range []string{"T", "G", "G", "C", "A", "A", "A"} {
		key, _ := nucleo.KeyOf(s)
		m.Inc(key)
	}
	tab := NewTable(m, 1, 7)
	var got []string
	for _, r := range tab.Rows {
		got = append(got, r.Kmer)
	}
	if strings.Join(got, "") != "AGCT" {
		t.Errorf("order = %v, want A G C T", got)
	}
}

func TestJSONRoundTripAndVerify(t *testing.T) {
	f := run(t, "GGTATTTTAATTTATAGTGGTATTTTAATTTATAGT", []int{1, 2, 6, 18})
	rep, err := Build(f, []int{1, 2}, []string{"GGTATT", "GGTATTTTAATTTATAGT"})
	if err != nil {
		t.Fatal(err)
	}
	if errs := Verify(rep); len(errs) != 0 {
		t.Fatalf("fresh report fails verification: %v", errs)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, rep); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var a, b bytes.Buffer
	if err := WriteText(&a, rep); err != nil {
		t.Fatal(err)
	}
	if err := WriteText(&b, back); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("text differs after JSON round trip:\n%s\nvs\n%s", a.String(), b.String())
	}
	if back.Literals[1].Count != 2 {
		t.Errorf("18-mer count = %d, want 2", back.Literals[1].Count)
	}

	back.Tables[0].Rows[0].Count++
	if errs := Verify(back); len(errs) == 0 {
		t.Error("tampered report passed verification")
	}
}

func TestReadJSONError(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{not json")); err == nil {
		t.Error("bad JSON accepted")
	}
}
