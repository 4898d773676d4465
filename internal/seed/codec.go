package seed

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

func GzipCompress(data []byte) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func GzipUncompress(data string) (string, error) {
	zr, err := gzip.NewReader(strings.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// UncompressedSize returns the uncompressed size a gzip stream declares in
// its ISIZE footer (mod 2^32). Returns 0 for inputs too short to carry a
// footer. The value is a declaration, not a guarantee — it is only used to
// reject oversized payloads before allocating a decompression buffer.
func UncompressedSize(data string) uint64 {
	if len(data) < 4 {
		return 0
	}
	return uint64(binary.LittleEndian.Uint32([]byte(data[len(data)-4:])))
}

func Base64Encode(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func Base64Decode(data string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
