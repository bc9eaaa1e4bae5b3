// Package seqinfo describes the per-series scan records that drive the
// heuristic, and knows how to produce them: either from the dicominfo.tsv that
// heudiconv writes, or by reading the DICOM headers directly.
package seqinfo

import (
	"fmt"
	"strings"
)

// SeqInfo is one acquired series. Field order and column names follow
// heudiconv's dicominfo.tsv.
type SeqInfo struct {
	TotalFilesTillNow      int       `csv:"total_files_till_now"`
	ExampleDcmFile         string    `csv:"example_dcm_file"`
	SeriesID               string    `csv:"series_id"`
	DcmDirName             string    `csv:"dcm_dir_name"`
	Unspecified2           string    `csv:"unspecified2"`
	Unspecified3           string    `csv:"unspecified3"`
	Dim1                   int       `csv:"dim1"`
	Dim2                   int       `csv:"dim2"`
	Dim3                   int       `csv:"dim3"`
	Dim4                   int       `csv:"dim4"`
	TR                     float64   `csv:"TR"`
	TE                     float64   `csv:"TE"`
	ProtocolName           string    `csv:"protocol_name"`
	IsMotionCorrected      Bool      `csv:"is_motion_corrected"`
	IsDerived              Bool      `csv:"is_derived"`
	PatientID              string    `csv:"patient_id"`
	StudyDescription       string    `csv:"study_description"`
	ReferringPhysicianName string    `csv:"referring_physician_name"`
	SeriesDescription      string    `csv:"series_description"`
	ImageType              ImageType `csv:"image_type"`
}

// Columns lists the dicominfo.tsv header, in order.
var Columns = []string{
	"total_files_till_now",
	"example_dcm_file",
	"series_id",
	"dcm_dir_name",
	"unspecified2",
	"unspecified3",
	"dim1",
	"dim2",
	"dim3",
	"dim4",
	"TR",
	"TE",
	"protocol_name",
	"is_motion_corrected",
	"is_derived",
	"patient_id",
	"study_description",
	"referring_physician_name",
	"series_description",
	"image_type",
}

// Bool reads and writes the True/False spelling used in dicominfo.tsv, and
// also accepts the usual strconv forms.
type Bool bool

func (b Bool) MarshalCSV() (string, error) {
	if b {
		return "True", nil
	}
	return "False", nil
}

func (b *Bool) UnmarshalCSV(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes":
		*b = true
	case "false", "f", "0", "no", "":
		*b = false
	default:
		return fmt.Errorf("cannot interpret %q as a boolean", s)
	}

	return nil
}

// ImageType holds the values of the DICOM ImageType attribute, e.g. ORIGINAL,
// PRIMARY, M, ND. In dicominfo.tsv it is written as a Python tuple:
// ('ORIGINAL', 'PRIMARY', 'M', 'ND').
type ImageType []string

func (it ImageType) MarshalCSV() (string, error) {
	return it.String(), nil
}

func (it ImageType) String() string {
	if len(it) == 0 {
		return "()"
	}

	quoted := make([]string, len(it))
	for i, v := range it {
		quoted[i] = "'" + v + "'"
	}

	// A one-element tuple keeps its trailing comma
	if len(quoted) == 1 {
		return "(" + quoted[0] + ",)"
	}

	return "(" + strings.Join(quoted, ", ") + ")"
}

// UnmarshalCSV accepts the tuple form as well as the raw backslash-delimited
// DICOM form (ORIGINAL\PRIMARY\M\ND).
func (it *ImageType) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)

	var parts []string
	if strings.HasPrefix(s, "(") || strings.HasPrefix(s, "[") {
		if len(s) < 2 || !(strings.HasSuffix(s, ")") || strings.HasSuffix(s, "]")) {
			return fmt.Errorf("unterminated image type %q", s)
		}
		parts = strings.Split(s[1:len(s)-1], ",")
	} else {
		parts = strings.Split(s, `\`)
	}

	out := make(ImageType, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part == "" {
			continue
		}
		out = append(out, part)
	}

	*it = out

	return nil
}

// Contains reports whether value is one of the image type values. The
// comparison is case-insensitive, as DICOM code strings are upper case but
// some converters lower them.
func (it ImageType) Contains(value string) bool {
	for _, v := range it {
		if strings.EqualFold(v, value) {
			return true
		}
	}

	return false
}
