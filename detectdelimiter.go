package dicombids

import (
	"bufio"
	"bytes"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. A tab anywhere in the header
// line wins outright: heudiconv's image_type column carries commas inside
// unquoted values, which can fool the detector.
func DetermineDelimiter(r io.Reader) rune {
	br := bufio.NewReader(r)
	header, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	if bytes.IndexByte(header, '\t') >= 0 {
		return '\t'
	}

	d := detector.New()
	delimiters := d.DetectDelimiter(br, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}
