package dicombids

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}

	return "invalid"
}

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// maxSigLen is the longest signature in byteCodeSigs.
const maxSigLen = 6

// DetectDataType attempts to detect the data type of a stream by checking
// against a set of known data types. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(r io.Reader) (DataType, error) {
	buff := make([]byte, maxSigLen)
	n, err := io.ReadFull(r, buff)
	if err != nil && err != io.ErrUnexpectedEOF {
		return DataTypeInvalid, err
	}

	return matchSignature(buff[:n]), nil
}

func matchSignature(head []byte) DataType {
	for dt, sig := range byteCodeSigs {
		if bytes.HasPrefix(head, sig) {
			return dt
		}
	}

	return DataTypeNoCompression
}

// MaybeDecompress sniffs the first bytes of r and, if they match a known
// compression format, returns a reader over the decompressed stream. Otherwise
// the bytes are passed through untouched. Closing the returned reader does not
// close r.
func MaybeDecompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(maxSigLen)
	if err != nil && err != io.EOF {
		return nil, pfx.Err(err)
	}

	switch matchSignature(head) {
	case DataTypeGzip:
		return gzip.NewReader(br)
	case DataTypeZip:
		// Only the first member of a zip archive is read
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, pfx.Err(err)
		}
		return &readCloserFaker{zr}, nil
	case DataTypeBZip2:
		return &readCloserFaker{bzip2.NewReader(br)}, nil
	case DataTypeXZ:
		reader, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &readCloserFaker{reader}, nil
	case DataTypeZ:
		return zlib.NewReader(br)
	}

	// No data type detected. For now, we assume this is uncompressed.
	return &readCloserFaker{br}, nil
}

// readCloserFaker "upgrades" readers that don't need to be closed
type readCloserFaker struct {
	io.Reader
}

func (c *readCloserFaker) Close() error {
	return nil
}
