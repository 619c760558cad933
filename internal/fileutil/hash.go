package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// ScanFileHashes hashes relPaths (slash separated, relative to rootPath).
func ScanFileHashes(rootPath string, relPaths []string) (map[string]string, error) {
	hashes := make(map[string]string, len(relPaths))
	for _, relPath := range relPaths {
		hash, err := HashFile(filepath.Join(rootPath, filepath.FromSlash(relPath)))
		if err != nil {
			return nil, err
		}
		hashes[relPath] = hash
	}
	return hashes, nil
}
