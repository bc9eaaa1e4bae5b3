package dicombids

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Decorates a Google Storage object handle with io.Reader, io.Seeker and
// io.Closer. Derived from
// https://github.com/googleapis/google-cloud-go/issues/1124#issuecomment-419070541
type GSReadSeekCloser struct {
	*storage.ObjectHandle
	Context context.Context
	Closer  *func() error
	r       *storage.Reader
	offset  int64 // offset the current reader was opened at
	pos     int64 // bytes consumed since offset
}

func (s *GSReadSeekCloser) Read(buf []byte) (int, error) {
	var err error
	if s.r == nil {
		s.r, err = s.NewRangeReader(s.Context, s.offset, -1)
		if err != nil {
			return 0, err
		}
	}
	n, err := s.r.Read(buf)
	s.pos += int64(n)

	return n, err
}

// Seek reopens the object at the new offset. io.SeekEnd is not supported
// because it would need another Attrs call.
func (s *GSReadSeekCloser) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64

	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = s.offset + s.pos + offset
	default:
		return 0, fmt.Errorf("io.Seeker 'whence' value %d is not implemented", whence)
	}

	if newOffset < 0 {
		return 0, fmt.Errorf("cannot seek to negative offset %d", newOffset)
	}

	if s.r != nil {
		s.r.Close()
		s.r = nil
	}

	s.offset = newOffset
	s.pos = 0

	return s.offset, nil
}

// Satisfies io.Closer. If o.Closer is not set, only the open range reader (if
// any) is closed.
func (s *GSReadSeekCloser) Close() error {
	var err error

	if s.r != nil {
		err = s.r.Close()
		s.r = nil
	}

	if s.Closer != nil {
		if cerr := (*s.Closer)(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// MaybeOpenSeekerFromGoogleStorage is the streaming counterpart to
// MaybeOpenFromGoogleStorage, for callers that read a file front to back.
func MaybeOpenSeekerFromGoogleStorage(path string, client *storage.Client) (ReadSeekCloser, int64, error) {
	if IsGoogleStoragePath(path) {
		if client == nil {
			return nil, 0, fmt.Errorf("%s: no google storage client was provided", path)
		}

		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, 0, err
		}

		wrappedHandle := &GSReadSeekCloser{
			ObjectHandle: client.Bucket(bucketName).Object(pathName),
			Context:      context.Background(),
		}

		attrs, err := wrappedHandle.ObjectHandle.Attrs(wrappedHandle.Context)
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}

		return wrappedHandle, attrs.Size, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fstat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fstat.Size(), nil
}
