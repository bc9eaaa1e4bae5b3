package seqinfo

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dicombids"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// ErrMissingColumn is returned when a seqinfo table lacks one of the columns
// that every SeqInfo field is read from.
var ErrMissingColumn = errors.New("seqinfo table is missing a required column")

// ReadTSV decodes a dicominfo.tsv-style table. The delimiter is sniffed, so
// comma-delimited exports also work. Extra columns (newer heudiconv versions
// add some) are ignored; missing ones are an error, as are rows whose length
// differs from the header's.
func ReadTSV(r io.Reader) ([]SeqInfo, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))

	delim := dicombids.DetermineDelimiter(bytes.NewReader(raw))

	header, err := newCSVReader(raw, delim).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: the table is empty", ErrMissingColumn)
	}
	if err != nil {
		return nil, pfx.Err(err)
	}

	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[strings.TrimSpace(name)] = struct{}{}
	}
	for _, name := range Columns {
		if _, ok := present[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	out := make([]SeqInfo, 0)
	if err := gocsv.UnmarshalCSV(newCSVReader(raw, delim), &out); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

func newCSVReader(raw []byte, delim rune) *csv.Reader {
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = delim != '\t'
	return cr
}

// ReadTSVFromPath reads a seqinfo table from a local path (~ is expanded) or a
// gs:// object. gzip, bzip2, xz and zip compressed tables are decompressed
// transparently.
func ReadTSVFromPath(path string, client *storage.Client) ([]SeqInfo, error) {
	f, _, err := dicombids.MaybeOpenSeekerFromGoogleStorage(dicombids.ExpandHome(path), client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	r, err := dicombids.MaybeDecompress(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	defer r.Close()

	infos, err := ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return infos, nil
}

// WriteTSV writes infos as a tab-delimited dicominfo.tsv, header first.
func WriteTSV(w io.Writer, infos []SeqInfo) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := gocsv.MarshalCSV(infos, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}

	cw.Flush()

	return pfx.Err(cw.Error())
}
