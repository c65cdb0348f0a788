package models

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"lukechampine.com/blake3"
)

type CacheEntry struct {
	FilePath   string      `json:"file_path"`
	ModTime    time.Time   `json:"mod_time"`
	Size       int64       `json:"size"`
	FileHash   string      `json:"file_hash"`
	ParsedFile *ParsedFile `json:"parsed_file"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewCacheEntry records parsedFile against content, the bytes it was parsed
// from. info must be taken before content was read: an edit racing the read
// then leaves a stale mtime behind and is caught by the hash on the next lookup.
func NewCacheEntry(filePath string, content []byte, info os.FileInfo, parsedFile *ParsedFile) (*CacheEntry, error) {
	if info == nil {
		return nil, fmt.Errorf("missing file info for %s", filePath)
	}

	return &CacheEntry{
		FilePath:   filePath,
		ModTime:    info.ModTime(),
		Size:       info.Size(),
		FileHash:   HashContent(content),
		ParsedFile: parsedFile,
		CreatedAt:  time.Now(),
	}, nil
}

func (ce *CacheEntry) IsValid() (bool, error) {
	stat, err := os.Stat(ce.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", ce.FilePath, err)
	}

	if stat.ModTime().Equal(ce.ModTime) && stat.Size() == ce.Size {
		return true, nil
	}

	currentHash, err := calculateFileHash(ce.FilePath)
	if err != nil {
		return false, fmt.Errorf("failed to calculate current hash for file %s: %w", ce.FilePath, err)
	}

	if currentHash == ce.FileHash {
		ce.ModTime = stat.ModTime()
		ce.Size = stat.Size()
		return true, nil
	}

	return false, nil
}

func HashContent(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := blake3.New(32, nil)
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
