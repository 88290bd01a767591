package engine

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// ReferenceLoader reads static reference documents (the glossary),
// memoized per path and modification time.
type ReferenceLoader struct {
	memo *Memo[string]
}

// NewReferenceLoader creates an empty ReferenceLoader.
func NewReferenceLoader() *ReferenceLoader {
	return &ReferenceLoader{memo: NewMemo[string]()}
}

// Load returns the document at path, or "" if it is absent or unreadable.
func (r *ReferenceLoader) Load(path string) string {
	return r.LoadAt(path, modTime(path))
}

// LoadAt returns the document at path for the given modification time.
func (r *ReferenceLoader) LoadAt(path string, mod time.Time) string {
	text, _ := r.memo.Get(path, stamp(mod), func() (string, error) {
		if path == "" {
			return "", nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			zap.L().Debug("reference: document unavailable", zap.String("path", path), zap.Error(err))
			return "", nil
		}
		return string(b), nil
	})
	return text
}
