// Package fasta extracts one record's sequence from multi-record FASTA input.
//
// Importing the package turns off sequence validation in
// github.com/shenwei356/bio/seq for the whole process: bytes outside the
// alphabet are dropped later by the encoder, not rejected while reading.
package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// ErrRecordNotFound is returned when the input ends before the target record.
var ErrRecordNotFound = errors.New("fasta: record not found")

const marker = '>'

func init() {
	seq.ValidateSeq = false
}

// matcher decides whether the header line (marker included) of the n-th
// record, counting from 1, is the target.
type matcher func(n int, header []byte) bool

// ReadRecord returns the body of the n-th record of r, counting from 1. The
// header line is skipped; interior line breaks are kept and the final line
// terminator is trimmed.
func ReadRecord(r io.Reader, n int) ([]byte, error) {
	if n < 1 {
		return nil, errors.Errorf("fasta: record ordinal %d out of range", n)
	}
	body, err := extract(r, func(i int, _ []byte) bool { return i == n })
	return body, errors.Wrapf(err, "record #%d", n)
}

// ReadRecordByID returns the body of the first record whose ID, the first
// whitespace-separated token after the marker, equals id.
func ReadRecordByID(r io.Reader, id string) ([]byte, error) {
	want := []byte(id)
	body, err := extract(r, func(_ int, header []byte) bool {
		return bytes.Equal(headerID(header), want)
	})
	return body, errors.Wrapf(err, "record %q", id)
}

// headerID returns the ID of a header line, marker included.
func headerID(header []byte) []byte {
	return firstToken(bytes.TrimRight(header[1:], "\r\n"))
}

// firstToken returns name up to its first space or tab.
func firstToken(name []byte) []byte {
	if i := bytes.IndexAny(name, " \t"); i >= 0 {
		return name[:i]
	}
	return name
}

func extract(r io.Reader, match matcher) ([]byte, error) {
	br := bufio.NewReaderSize(r, 1<<16)

	// Find the target header.
	n := 0
	for {
		line, err := br.ReadSlice('\n')
		var header []byte
		if len(line) > 0 && line[0] == marker {
			n++
			header = bytes.Clone(line)
		}
		// Skip the remainder of an over-long line.
		for err == bufio.ErrBufferFull {
			_, err = br.ReadSlice('\n')
		}
		if header != nil && match(n, header) {
			if err == io.EOF {
				return []byte{}, nil
			}
			break
		}
		if err == io.EOF {
			return nil, ErrRecordNotFound
		}
		if err != nil {
			return nil, errors.Wrap(err, "scanning headers")
		}
	}

	// Copy the body up to the next header or EOF.
	var body bytes.Buffer
	atLineStart := true
	for {
		if atLineStart {
			b, err := br.Peek(1)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrap(err, "reading body")
			}
			if b[0] == marker {
				break
			}
		}
		line, err := br.ReadSlice('\n')
		body.Write(line)
		atLineStart = err == nil
		if err == io.EOF {
			break
		}
		if err != nil && err != bufio.ErrBufferFull {
			return nil, errors.Wrap(err, "reading body")
		}
	}
	return trimTerminator(body.Bytes()), nil
}

func trimTerminator(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}

// ReadFile returns the sequence of the target record of a FASTA file, which
// may be gzip, xz, zstd or bzip2 compressed. The record is chosen by id when
// id is non-empty, otherwise by its ordinal n counting from 1. Line breaks
// are already removed from the result. Use "-" for stdin.
//
// IDs follow ReadRecordByID: the first whitespace-separated token of the
// header, whatever ID the fastx reader itself parsed.
func ReadFile(path, id string, n int) ([]byte, error) {
	reader, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer reader.Close()

	for i := 1; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		if (id != "" && string(firstToken(bytes.TrimRight(record.Name, "\r"))) == id) || (id == "" && i == n) {
			return bytes.Clone(record.Seq.Seq), nil
		}
	}
	if id != "" {
		return nil, errors.Wrapf(ErrRecordNotFound, "record %q in %s", id, path)
	}
	return nil, errors.Wrapf(ErrRecordNotFound, "record #%d in %s", n, path)
}
