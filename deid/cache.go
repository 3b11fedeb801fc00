package deid

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/gillesdemey/go-deid/dicom"
)

// IndexCache memoizes field indexes by header identity. Two distinct files
// with equal content get distinct entries. It is safe for concurrent use.
type IndexCache struct {
	opts    IndexOptions
	indexes *xsync.MapOf[*dicom.File, *FieldIndex]
}

// NewIndexCache returns a cache building indexes with opts.
func NewIndexCache(opts IndexOptions) *IndexCache {
	return &IndexCache{
		opts:    opts,
		indexes: xsync.NewMapOf[*dicom.File, *FieldIndex](),
	}
}

// Get returns the index of file, building it on first use.
func (c *IndexCache) Get(file *dicom.File) *FieldIndex {
	idx, _ := c.indexes.LoadOrCompute(file, func() *FieldIndex {
		return BuildIndex(file, c.opts)
	})
	return idx
}

// Forget drops the index of file.
func (c *IndexCache) Forget(file *dicom.File) {
	c.indexes.Delete(file)
}

// Len returns the number of cached indexes.
func (c *IndexCache) Len() int {
	return c.indexes.Size()
}
