// Package dicombids holds the I/O helpers shared by the seqinfo readers and
// the command-line tools: gs:// access, compression sniffing and delimiter
// detection.
package dicombids

import "io"

type ReaderAtCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}
