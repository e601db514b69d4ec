package concrete

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

func sha1File(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%.*X", sha1.Size<<1, h.Sum(nil)), nil
}
