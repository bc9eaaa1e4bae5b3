package dicombids

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// NewStorageClient creates a Google Storage client with default credentials.
// If anonymous is set, no credentials are looked up, which is what public
// buckets need.
func NewStorageClient(ctx context.Context, anonymous bool) (*storage.Client, error) {
	var opts []option.ClientOption
	if anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return client, nil
}

// IsGoogleStoragePath reports whether path points into a Google Storage bucket.
func IsGoogleStoragePath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// SplitGSPath splits gs://bucket/path/to/object into its bucket and object
// name. A bare bucket (gs://bucket or gs://bucket/) yields an empty object
// name.
func SplitGSPath(path string) (bucket, object string, err error) {
	if !IsGoogleStoragePath(path) {
		return "", "", fmt.Errorf("%s is not a google storage path", path)
	}

	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if pathParts[0] == "" {
		return "", "", fmt.Errorf("%s does not name a bucket", path)
	}

	if len(pathParts) == 1 {
		return pathParts[0], "", nil
	}

	return pathParts[0], pathParts[1], nil
}

// Decorates a Google Storage object handle with ReadAt
type GSReaderAtCloser struct {
	*storage.ObjectHandle
	Context context.Context
	Closer  *func() error
	Reader  *storage.Reader
}

func (o *GSReaderAtCloser) Read(p []byte) (n int, err error) {
	if o.Reader == nil {
		o.Reader, err = o.NewReader(o.Context)
		if err != nil {
			return 0, err
		}
	}

	return o.Reader.Read(p)
}

// ReadAt satisfies io.ReaderAt. Note that this is dependent upon making p a
// buffer of the desired length to be read by NewRangeReader.
func (o *GSReaderAtCloser) ReadAt(p []byte, offset int64) (n int, err error) {
	rdr, err := o.NewRangeReader(o.Context, offset, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rdr.Close()

	return readFull(rdr, p)
}

// readFull fills p from r. A single Read on a storage.Reader may return fewer
// bytes with a nil error, which io.ReaderAt forbids; a range that ends early
// is reported as io.EOF.
func readFull(r io.Reader, p []byte) (int, error) {
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	return n, err
}

// Satisfies io.Closer. Closes the streaming reader, if one was opened, and
// then calls o.Closer if it is set.
func (o *GSReaderAtCloser) Close() error {
	var err error

	if o.Reader != nil {
		err = o.Reader.Close()
		o.Reader = nil
	}

	if o.Closer != nil {
		if cerr := (*o.Closer)(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// MaybeOpenFromGoogleStorage opens path as a ReaderAtCloser along with its
// size, which is what archive/zip needs. gs:// paths are served by client;
// anything else is opened from the local filesystem.
func MaybeOpenFromGoogleStorage(path string, client *storage.Client) (ReaderAtCloser, int64, error) {
	if IsGoogleStoragePath(path) {
		if client == nil {
			return nil, 0, fmt.Errorf("%s: no google storage client was provided", path)
		}

		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, 0, err
		}

		// Open the bucket with default credentials
		handle := client.Bucket(bucketName).Object(pathName)

		wrappedHandle := &GSReaderAtCloser{
			ObjectHandle: handle,
			Context:      context.Background(),
		}

		// Make a hard call to get the filesize
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

// ListFromGoogleStorage lists the objects under a gs:// prefix, returning
// their full gs:// paths. "Directory" placeholder objects are skipped.
func ListFromGoogleStorage(path string, client *storage.Client) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("%s: no google storage client was provided", path)
	}

	bucketName, prefix, err := SplitGSPath(path)
	if err != nil {
		return nil, err
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	out := make([]string, 0)

	it := client.Bucket(bucketName).Objects(context.Background(), &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}

		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		out = append(out, "gs://"+bucketName+"/"+attrs.Name)
	}

	return out, nil
}
