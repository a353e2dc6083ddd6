package gatherer

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// hashChunkSize is 128 MD5 blocks; content is streamed through the digest
// in reads of this size.
const hashChunkSize = 128 * md5.BlockSize

// Hash returns the lowercase hex MD5 digest of everything read from r.
func Hash(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile hashes the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Hash(f)
}
