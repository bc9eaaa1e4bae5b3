// dicominfo reads the headers of a session's DICOM files and emits one row per
// series in heudiconv's dicominfo.tsv layout. The output can be inspected by
// hand, edited, and then fed to `heuristic -seqinfo`.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dicombids"
	_ "github.com/carbocation/dicombids/compileinfoprint"
	"github.com/carbocation/dicombids/seqinfo"
)

var (
	BufferSize = 4096
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

// Emits to stdout
func main() {
	defer STDOUT.Flush()

	var path string
	var anonymous, verbose bool
	var concurrency int

	flag.StringVar(&path, "path", "", "Path to a folder of DICOM files, a gs:// prefix, or a .zip of DICOM files.")
	flag.BoolVar(&anonymous, "anonymous", false, "Access gs:// paths without credentials (public buckets).")
	flag.BoolVar(&verbose, "verbose", false, "Log files that are skipped because they are not DICOM.")
	flag.IntVar(&concurrency, "concurrency", 0, "(Optional) Number of DICOM headers to parse at once. Defaults to 4x the number of CPUs.")
	flag.Parse()

	if path == "" {
		flag.Usage()
		os.Exit(1)
	}

	var client *storage.Client
	if dicombids.IsGoogleStoragePath(path) {
		var err error
		client, err = dicombids.NewStorageClient(context.Background(), anonymous)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	infos, err := seqinfo.ScanDicom(path, client, seqinfo.ScanOptions{Concurrency: concurrency, Verbose: verbose})
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("Found %d series under %s\n", len(infos), path)

	if err := seqinfo.WriteTSV(STDOUT, infos); err != nil {
		log.Fatalln(err)
	}
}
