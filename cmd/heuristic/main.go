// heuristic assigns the series of one imaging session to BIDS output
// templates. The session is described either by a heudiconv dicominfo.tsv or
// by the DICOM files themselves (a folder, a gs:// prefix, or a .zip). The
// resulting mapping is written to stdout as JSON or TSV; it is up to the
// converter to fill in {subject} and the other placeholders.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dicombids"
	_ "github.com/carbocation/dicombids/compileinfoprint"
	"github.com/carbocation/dicombids/heuristic"
	"github.com/carbocation/dicombids/seqinfo"
)

var (
	BufferSize = 4096
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	defer STDOUT.Flush()

	var seqinfoPath, dicomPath, profileName, format string
	var anonymous, verbose bool
	var concurrency int

	flag.StringVar(&seqinfoPath, "seqinfo", "", "Path to a dicominfo.tsv (may be compressed, may be gs://). Exclusive with -dicom.")
	flag.StringVar(&dicomPath, "dicom", "", "Path to a folder of DICOM files, a gs:// prefix, or a .zip of DICOM files. Exclusive with -seqinfo.")
	flag.StringVar(&profileName, "profile", heuristic.DPRC, fmt.Sprintf("Heuristic to apply. One of: %s", heuristic.ProfileNames()))
	flag.StringVar(&format, "format", "json", "Output format: json or tsv.")
	flag.BoolVar(&anonymous, "anonymous", false, "Access gs:// paths without credentials (public buckets).")
	flag.BoolVar(&verbose, "verbose", false, "Log files that are skipped while reading DICOM.")
	flag.IntVar(&concurrency, "concurrency", 0, "(Optional) Number of DICOM headers to parse at once. Defaults to 4x the number of CPUs.")
	flag.Parse()

	if (seqinfoPath == "") == (dicomPath == "") {
		fmt.Fprintln(os.Stderr, "Please pass exactly one of -seqinfo or -dicom.")
		flag.Usage()
		os.Exit(1)
	}

	if format != "json" && format != "tsv" {
		fmt.Fprintf(os.Stderr, "Unknown -format %q\n", format)
		flag.Usage()
		os.Exit(1)
	}

	profile, err := heuristic.New(profileName)
	if err != nil {
		log.Fatalln(err)
	}

	if err := run(profile, seqinfoPath, dicomPath, format, anonymous, seqinfo.ScanOptions{Concurrency: concurrency, Verbose: verbose}); err != nil {
		log.Fatalln(err)
	}
}

func run(profile heuristic.Profile, seqinfoPath, dicomPath, format string, anonymous bool, opts seqinfo.ScanOptions) error {
	// Initialize the Google Storage client, but only if we are pointing to a
	// Google Storage path.
	var client *storage.Client
	if dicombids.IsGoogleStoragePath(seqinfoPath) || dicombids.IsGoogleStoragePath(dicomPath) {
		var err error
		client, err = dicombids.NewStorageClient(context.Background(), anonymous)
		if err != nil {
			return err
		}
		defer client.Close()
	}

	var infos []seqinfo.SeqInfo
	var err error
	if seqinfoPath != "" {
		infos, err = seqinfo.ReadTSVFromPath(seqinfoPath, client)
	} else {
		infos, err = seqinfo.ScanDicom(dicomPath, client, opts)
	}
	if err != nil {
		return err
	}

	log.Printf("Classifying %d series with the %s heuristic\n", len(infos), profile.Name)

	info := profile.Classify(infos)

	for _, k := range info.Keys() {
		if len(info[k]) == 0 {
			log.Println("No series matched", k.Template())
		}
	}

	if format == "tsv" {
		return info.WriteTSV(STDOUT)
	}

	enc := json.NewEncoder(STDOUT)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
