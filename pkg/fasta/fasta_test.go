package fasta

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oisee/knucleotide/pkg/nucleo"
	"github.com/pkg/errors"
)

const sample = `>ONE Homo sapiens alu
GGCCGGGCGCGGTGGCTCACGCCTGTAATCCCAGCA
CTTTGG
>TWO IUB ambiguity codes
cttBtatcatatgctaKggNcataaaSatgtaaaDc
>THREE Homo sapiens frequency
aacacttcaccaggtatcgtgaaggctcaagattac
ccagagaacctttgcaatataagaatatgtatgcag
cattac
`

func TestReadRecord(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"third", sample, 3, "aacacttcaccaggtatcgtgaaggctcaagattac\nccagagaacctttgcaatataagaatatgtatgcag\ncattac"},
		{"first", sample, 1, "GGCCGGGCGCGGTGGCTCACGCCTGTAATCCCAGCA\nCTTTGG"},
		{"second", sample, 2, "cttBtatcatatgctaKggNcataaaSatgtaaaDc"},
		{"no trailing newline", ">a\nAC\n>b\nGT", 2, "GT"},
		{"crlf", ">a\r\nAC\r\nGT\r\n>b\r\n", 1, "AC\r\nGT"},
		{"empty body", ">a\n>b\nACGT\n", 1, ""},
		{"header at eof", ">a\nAC\n>b", 2, ""},
		{"preamble ignored", "junk\n>a\nTT\n", 1, "TT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadRecord(strings.NewReader(tc.in), tc.n)
			if err != nil {
				t.Fatalf("ReadRecord: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadRecordNotFound(t *testing.T) {
	_, err := ReadRecord(strings.NewReader(sample), 4)
	if errors.Cause(err) != ErrRecordNotFound {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
	if _, err := ReadRecord(strings.NewReader(sample), 0); err == nil {
		t.Fatal("ordinal 0 accepted")
	}
	if _, err := ReadRecord(strings.NewReader(""), 1); errors.Cause(err) != ErrRecordNotFound {
		t.Fatalf("empty input err = %v", err)
	}
}

func TestReadRecordByID(t *testing.T) {
	got, err := ReadRecordByID(strings.NewReader(sample), "TWO")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "cttBtatcatatgctaKggNcataaaSatgtaaaDc" {
		t.Errorf("got %q", got)
	}
	if _, err := ReadRecordByID(strings.NewReader(sample), "THRE"); errors.Cause(err) != ErrRecordNotFound {
		t.Errorf("prefix ID matched: %v", err)
	}
	if _, err := ReadRecordByID(strings.NewReader(">THREE\r\nAC\n"), "THREE"); err != nil {
		t.Errorf("CRLF header: %v", err)
	}
}

func TestReadRecordLongLines(t *testing.T) {
	long := bytes.Repeat([]byte("ACGT"), 40_000)
	in := ">x " + strings.Repeat("h", 100_000) + "\nAC\n>y\n" + string(long) + "\n>z\n"
	got, err := ReadRecord(strings.NewReader(in), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, long) {
		t.Errorf("long body: got %d bytes, want %d", len(got), len(long))
	}
	got, err = ReadRecord(strings.NewReader(in), 1)
	if err != nil || string(got) != "AC" {
		t.Errorf("record after long header = %q, %v", got, err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path, "THREE", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := "aacacttcaccaggtatcgtgaaggctcaagattacccagagaacctttgcaatataagaatatgtatgcagcattac"
	if string(got) != want {
		t.Errorf("by id: got %q", got)
	}

	got, err = ReadFile(path, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "GGCCGGGCGCGGTGGCTCACGCCTGTAATCCCAGCACTTTGG" {
		t.Errorf("by ordinal: got %q", got)
	}

	if _, err := ReadFile(path, "FOUR", 0); errors.Cause(err) != ErrRecordNotFound {
		t.Errorf("missing id err = %v", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.fa"), "", 1); err == nil {
		t.Error("missing file accepted")
	}
}

// File and stream input must select the same record for the same ID.
func TestReadFileMatchesStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"ONE", "TWO", "THREE"} {
		t.Run(id, func(t *testing.T) {
			fromFile, err := ReadFile(path, id, 0)
			if err != nil {
				t.Fatalf("file: %v", err)
			}
			fromStream, err := ReadRecordByID(strings.NewReader(sample), id)
			if err != nil {
				t.Fatalf("stream: %v", err)
			}
			if a, b := nucleo.Encode(fromFile), nucleo.Encode(fromStream); !bytes.Equal(a, b) {
				t.Errorf("file and stream differ: %d vs %d symbols", len(a), len(b))
			}
		})
	}
	for n := 1; n <= 3; n++ {
		fromFile, err := ReadFile(path, "", n)
		if err != nil {
			t.Fatalf("file #%d: %v", n, err)
		}
		fromStream, err := ReadRecord(strings.NewReader(sample), n)
		if err != nil {
			t.Fatalf("stream #%d: %v", n, err)
		}
		if !bytes.Equal(nucleo.Encode(fromFile), nucleo.Encode(fromStream)) {
			t.Errorf("record #%d: file and stream differ", n)
		}
	}
}
