package seqinfo

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"log"
	"math"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dicombids"
	"github.com/carbocation/pfx"
)

// ScanOptions controls how DICOM sources are read.
type ScanOptions struct {
	// Number of files whose headers are parsed at once. Defaults to
	// 4*runtime.NumCPU().
	Concurrency int

	// If set, files that could not be read as DICOM are logged as they are
	// skipped.
	Verbose bool
}

func (o ScanOptions) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}

	return 4 * runtime.NumCPU()
}

// ScanDicom dispatches on the kind of source: a .zip archive (local or gs://)
// is read member by member, anything else is treated as a directory (or gs://
// prefix) of DICOM files.
func ScanDicom(source string, client *storage.Client, opts ScanOptions) ([]SeqInfo, error) {
	source = dicombids.ExpandHome(source)

	if strings.HasSuffix(strings.ToLower(source), ".zip") {
		return ScanDicomZip(source, client, opts)
	}

	return ScanDicomDir(source, client, opts)
}

// ScanDicomDir reads the header of every file below root and returns one
// SeqInfo per series. root may be a gs:// prefix, in which case client must be
// set. Files that are not DICOM are skipped.
func ScanDicomDir(root string, client *storage.Client, opts ScanOptions) ([]SeqInfo, error) {
	var paths []string
	var err error

	if dicombids.IsGoogleStoragePath(root) {
		paths, err = dicombids.ListFromGoogleStorage(root, client)
	} else {
		paths, err = listLocalFiles(root)
	}
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("No files were found under %s", root)
	}

	parsed := parseHeaders(paths, opts, func(i int) (fileHeader, error) {
		return parseHeaderFromPath(paths[i], client)
	})

	if len(parsed) == 0 {
		return nil, fmt.Errorf("None of the %d files under %s could be read as DICOM", len(paths), root)
	}

	return groupSeries(parsed, path.Base(filepath.ToSlash(root))), nil
}

// parseHeaders calls parse for each of names on at most opts.Concurrency
// goroutines and returns the headers that could be read, in input order.
// Failures are skipped.
func parseHeaders(names []string, opts ScanOptions, parse func(i int) (fileHeader, error)) []fileHeader {
	headers := make([]*fileHeader, len(names))

	concurrency := opts.concurrency()
	semaphore := make(chan struct{}, concurrency)

	for i := range names {

		// Will block after `concurrency` simultaneous goroutines are running
		semaphore <- struct{}{}

		go func(i int) {

			// Be sure to permit unblocking once we finish
			defer func() { <-semaphore }()

			h, err := parse(i)
			if err != nil {
				if opts.Verbose {
					log.Println("Ignoring", names[i], "and continuing:", err)
				}
				return
			}

			// Each goroutine owns its own slot
			headers[i] = &h
		}(i)
	}

	// Make sure we finish all the reads before we group.
	for i := 0; i < cap(semaphore); i++ {
		semaphore <- struct{}{}
	}

	parsed := make([]fileHeader, 0, len(headers))
	for _, h := range headers {
		if h != nil {
			parsed = append(parsed, *h)
		}
	}

	return parsed
}

func listLocalFiles(root string) ([]string, error) {
	out := make([]string, 0)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if p != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || name == "DICOMDIR" {
			return nil
		}

		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

func parseHeaderFromPath(filePath string, client *storage.Client) (fileHeader, error) {
	f, nBytes, err := dicombids.MaybeOpenFromGoogleStorage(filePath, client)
	if err != nil {
		return fileHeader{}, err
	}
	defer f.Close()

	h, err := parseHeader(f, nBytes)
	if err != nil {
		return h, err
	}
	h.Path = filePath

	return h, nil
}

// ScanDicomZip reads every member of a zip archive (local, or gs:// if client
// is set) as a DICOM file and returns one SeqInfo per series.
func ScanDicomZip(zipPath string, client *storage.Client, opts ScanOptions) ([]SeqInfo, error) {
	// Read the zip file handle into memory still compressed and turn it into an
	// io.ReaderAt which is appropriate for consumption by the zip reader -
	// either from a local file, or from Google storage, depending on the prefix
	// you provide.
	f, nbytes, err := dicombids.MaybeOpenFromGoogleStorage(zipPath, client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	rc, err := zip.NewReader(f, nbytes)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", zipPath, err))
	}

	members := make([]*zip.File, 0, len(rc.File))
	names := make([]string, 0, len(rc.File))
	for _, v := range rc.File {
		if v.FileInfo().IsDir() {
			continue
		}
		members = append(members, v)
		names = append(names, zipPath+":"+v.Name)
	}

	// Members are opened through their own section readers, so they can be
	// parsed concurrently.
	parsed := parseHeaders(names, opts, func(i int) (fileHeader, error) {
		return parseZipMember(members[i])
	})

	if len(parsed) == 0 {
		return nil, fmt.Errorf("None of the %d members of %s could be read as DICOM", len(rc.File), zipPath)
	}

	return groupSeries(parsed, strings.TrimSuffix(path.Base(zipPath), path.Ext(zipPath))), nil
}

func parseZipMember(v *zip.File) (fileHeader, error) {
	unzippedFile, err := v.Open()
	if err != nil {
		return fileHeader{}, err
	}
	defer unzippedFile.Close()

	h, err := parseHeader(unzippedFile, int64(v.UncompressedSize64))
	if err != nil {
		return h, err
	}
	h.Path = v.Name

	return h, nil
}

// groupSeries collects file headers into series and describes each one the
// way heudiconv does. rootName names the directory of files that sit at the
// top of the source.
func groupSeries(headers []fileHeader, rootName string) []SeqInfo {
	sort.Slice(headers, func(i, j int) bool { return headers[i].Path < headers[j].Path })

	type series struct {
		files []fileHeader
	}

	bySeries := make(map[string]*series)
	order := make([]*series, 0)
	for _, h := range headers {
		key := h.SeriesInstanceUID
		if key == "" {
			key = fmt.Sprintf("series-%d", h.SeriesNumber)
		}

		s, exists := bySeries[key]
		if !exists {
			s = &series{}
			bySeries[key] = s
			order = append(order, s)
		}
		s.files = append(s.files, h)
	}

	// Files are path-sorted, so the first file of each series is its lowest
	// path; that breaks ties between equal series numbers.
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].files[0].SeriesNumber < order[j].files[0].SeriesNumber
	})

	out := make([]SeqInfo, 0, len(order))
	totalFiles := 0
	for _, s := range order {
		totalFiles += len(s.files)
		out = append(out, describeSeries(s.files, totalFiles, rootName))
	}

	return out
}

func describeSeries(files []fileHeader, totalFilesTillNow int, rootName string) SeqInfo {
	first := files[0]
	nFiles := len(files)

	dim1, dim2 := first.Rows, first.Columns
	var dim3, dim4 int

	switch {
	case first.ImageType.Contains("MOSAIC"):
		// Each file is one volume with its slices tiled into a square grid.
		nSlices := first.ImagesInMosaic
		if nSlices < 1 {
			nSlices = 1
		}
		tiles := int(math.Ceil(math.Sqrt(float64(nSlices))))
		dim1, dim2 = first.Rows/tiles, first.Columns/tiles
		dim3, dim4 = nSlices, nFiles
	case first.NumberOfFrames > 1:
		dim3, dim4 = first.NumberOfFrames, nFiles
	default:
		dim3, dim4 = nFiles, 1
	}

	slashed := filepath.ToSlash(first.Path)
	dirName := path.Base(path.Dir(slashed))
	if path.Dir(slashed) == "." {
		dirName = rootName
	}

	return SeqInfo{
		TotalFilesTillNow:      totalFilesTillNow,
		ExampleDcmFile:         path.Base(slashed),
		SeriesID:               fmt.Sprintf("%d-%s", first.SeriesNumber, first.ProtocolName),
		DcmDirName:             dirName,
		Unspecified2:           "-",
		Unspecified3:           "-",
		Dim1:                   dim1,
		Dim2:                   dim2,
		Dim3:                   dim3,
		Dim4:                   dim4,
		TR:                     first.RepetitionTime / 1000,
		TE:                     first.EchoTime,
		ProtocolName:           first.ProtocolName,
		IsMotionCorrected:      Bool(first.ImageType.Contains("MOCO") || strings.Contains(first.SeriesDescription, "MoCo")),
		IsDerived:              Bool(first.ImageType.Contains("DERIVED")),
		PatientID:              first.PatientID,
		StudyDescription:       first.StudyDescription,
		ReferringPhysicianName: first.ReferringPhysicianName,
		SeriesDescription:      first.SeriesDescription,
		ImageType:              first.ImageType,
	}
}
