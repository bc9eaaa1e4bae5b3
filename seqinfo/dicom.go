package seqinfo

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// Siemens private tag holding the number of slices tiled into a mosaic.
var siemensNumberOfImagesInMosaic = dicomtag.Tag{Group: 0x0019, Element: 0x100a}

// fileHeader is the subset of one DICOM file's header needed to describe its
// series.
type fileHeader struct {
	Path                   string
	SeriesInstanceUID      string
	SeriesNumber           int
	ProtocolName           string
	SeriesDescription      string
	Rows                   int
	Columns                int
	NumberOfFrames         int
	ImagesInMosaic         int
	RepetitionTime         float64
	EchoTime               float64
	PatientID              string
	StudyDescription       string
	ReferringPhysicianName string
	ImageType              ImageType
}

// parseHeader reads one DICOM file (without its pixel data) from r, which
// holds nBytes bytes.
func parseHeader(r io.Reader, nBytes int64) (fileHeader, error) {
	p, err := dicom.NewParser(r, nBytes, nil)
	if err != nil {
		return fileHeader{}, err
	}

	parsedData, err := safelyParse(p, dicom.ParseOptions{
		DropPixelData: true,
	})
	if parsedData == nil || err != nil {
		return fileHeader{}, fmt.Errorf("Error reading dicom: %v", err)
	}

	return headerFromDataSet(parsedData), nil
}

// safelyParse consumes panics emitted by the dicom library, which are
// inappropriate and must be captured in order to turn them into recoverable
// errors.
func safelyParse(p dicom.Parser, opts dicom.ParseOptions) (parsedData *element.DataSet, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = pfx.Err(fmt.Errorf("%v", panicErr))
		}
	}()

	return p.Parse(opts)
}

func headerFromDataSet(ds *element.DataSet) fileHeader {
	h := fileHeader{}

	for _, elem := range ds.Elements {
		switch elem.Tag {
		case dicomtag.SeriesInstanceUID:
			h.SeriesInstanceUID = elementString(elem)
		case dicomtag.SeriesNumber:
			h.SeriesNumber = elementInt(elem)
		case dicomtag.ProtocolName:
			h.ProtocolName = elementString(elem)
		case dicomtag.SeriesDescription:
			h.SeriesDescription = elementString(elem)
		case dicomtag.Rows:
			h.Rows = elementInt(elem)
		case dicomtag.Columns:
			h.Columns = elementInt(elem)
		case dicomtag.NumberOfFrames:
			h.NumberOfFrames = elementInt(elem)
		case siemensNumberOfImagesInMosaic:
			h.ImagesInMosaic = elementInt(elem)
		case dicomtag.RepetitionTime:
			h.RepetitionTime = elementFloat(elem)
		case dicomtag.EchoTime:
			h.EchoTime = elementFloat(elem)
		case dicomtag.PatientID:
			h.PatientID = elementString(elem)
		case dicomtag.StudyDescription:
			h.StudyDescription = elementString(elem)
		case dicomtag.ReferringPhysicianName:
			h.ReferringPhysicianName = elementString(elem)
		case dicomtag.ImageType:
			h.ImageType = elementStrings(elem)
		}
	}

	return h
}

func cleanDicomString(s string) string {
	return strings.Trim(s, " \x00")
}

func elementString(elem *element.Element) string {
	if len(elem.Value) == 0 {
		return ""
	}

	s, ok := elem.Value[0].(string)
	if !ok {
		return ""
	}

	return cleanDicomString(s)
}

func elementStrings(elem *element.Element) []string {
	out := make([]string, 0, len(elem.Value))
	for _, v := range elem.Value {
		s, ok := v.(string)
		if !ok {
			continue
		}
		// Some writers leave multi-valued strings joined
		for _, part := range strings.Split(s, `\`) {
			if part = cleanDicomString(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// elementInt handles both binary (US/UL/SS/SL) and text (IS) integer VRs.
// Unparseable values come back as 0.
func elementInt(elem *element.Element) int {
	if len(elem.Value) == 0 {
		return 0
	}

	switch v := elem.Value[0].(type) {
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case string:
		n, err := strconv.Atoi(cleanDicomString(v))
		if err != nil {
			return 0
		}
		return n
	}

	return 0
}

// elementFloat handles decimal strings (DS) as well as FL/FD.
func elementFloat(elem *element.Element) float64 {
	if len(elem.Value) == 0 {
		return 0
	}

	switch v := elem.Value[0].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(cleanDicomString(v), 64)
		if err != nil {
			return 0
		}
		return f
	}

	return 0
}
