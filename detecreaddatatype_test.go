package dicombids

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"
)

func TestDetectDataType(t *testing.T) {
	cases := []struct {
		in   []byte
		want DataType
	}{
		{[]byte{0x1f, 0x8b, 0x08, 0x00}, DataTypeGzip},
		{[]byte{0x50, 0x4b, 0x03, 0x04, 0x14, 0x00}, DataTypeZip},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, DataTypeXZ},
		{[]byte("BZh91AY"), DataTypeBZip2},
		{[]byte("total_files_till_now\t"), DataTypeNoCompression},
		{[]byte("ab"), DataTypeNoCompression},
	}

	for _, c := range cases {
		got, err := DetectDataType(bytes.NewReader(c.in))
		if err != nil {
			t.Errorf("%x: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%x: got %s, want %s", c.in, got, c.want)
		}
	}

	if _, err := DetectDataType(bytes.NewReader(nil)); err == nil {
		t.Error("expected an error for an empty stream")
	}
}

func TestMaybeDecompress(t *testing.T) {
	const text = "total_files_till_now\texample_dcm_file\n208\tIM-0002-0001.dcm\n"

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	w.Write([]byte(text))
	w.Close()

	for name, in := range map[string][]byte{
		"plain": []byte(text),
		"gzip":  gz.Bytes(),
		"short": []byte("ab"),
	} {
		r, err := MaybeDecompress(bytes.NewReader(in))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}

		out, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}

		want := text
		if name == "short" {
			want = "ab"
		}
		if string(out) != want {
			t.Errorf("%s: got %q", name, out)
		}
	}
}

func TestDetermineDelimiter(t *testing.T) {
	if got := DetermineDelimiter(strings.NewReader("a\tb\tc\n('X', 'Y')\t2\t3\n")); got != '\t' {
		t.Errorf("got %q, want tab", got)
	}
}
