/*
Package concrete is a library for converting image sequences into frames made
of the sixteen concrete colors and for maintaining a catalog of the processed
frame files.
*/
package concrete

import (
	"errors"
	"os"

	"github.com/bodgit/concrete/catalog"
	"github.com/bodgit/concrete/quantizer"
	"github.com/rs/zerolog"
)

var errNoCatalog = errors.New("concrete: no catalog")

// Concrete ties the catalog and the shared quantizer table together
type Concrete struct {
	db     *catalog.DB
	table  *quantizer.Table
	logger zerolog.Logger
}

// New returns a Concrete using db and table. db may be nil in which case
// nothing is recorded.
func New(db *catalog.DB, table *quantizer.Table, logger zerolog.Logger) *Concrete {
	if table == nil {
		table = quantizer.New()
	}
	return &Concrete{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// Resolve returns the frame file for nameOrFile. An existing file is returned
// as is, otherwise the name is looked up in the catalog.
func (c *Concrete) Resolve(nameOrFile string) (string, error) {
	if info, err := os.Stat(nameOrFile); err == nil && info.Mode().IsRegular() {
		return nameOrFile, nil
	} else if !errors.Is(err, os.ErrNotExist) && err != nil {
		return "", err
	}

	if c.db == nil {
		return "", catalog.ErrNotFound
	}

	v, err := c.db.Find(nameOrFile)
	if err != nil {
		return "", err
	}
	return v.Path, nil
}
