// Package gatherer walks an import directory and builds a manifest of the
// recognized documents it contains, keyed by directory.
package gatherer

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/ingestor/internal/filetype"
)

// Classifier decides the document type of a file's content.
type Classifier interface {
	Classify(r io.Reader) filetype.DocumentType
}

// Gatherer scans import directories. It keeps no state between passes, so
// one value can serve any number of sequential or concurrent Gather calls.
type Gatherer struct {
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time
	open       func(name string) (io.ReadSeekCloser, error)
}

func openFile(name string) (io.ReadSeekCloser, error) { return os.Open(name) }

// New returns a Gatherer that sniffs content with filetype.Classifier.
func New(logger *zap.Logger) *Gatherer {
	return NewWithClassifier(filetype.NewClassifier(), logger)
}

// NewWithClassifier returns a Gatherer using the given classifier.
func NewWithClassifier(c Classifier, logger *zap.Logger) *Gatherer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gatherer{
		classifier: c,
		logger:     logger.Named("gatherer"),
		now:        time.Now,
		open:       openFile,
	}
}

// pass holds the state of a single Gather call.
type pass struct {
	root      string
	manifest  Manifest
	lastStamp int64
}

// Gather walks root depth-first and returns the manifest of recognized
// files. Problems with individual files or subdirectories are logged at
// debug level and skipped. Only a root that cannot be stat'ed, is not a
// directory, or cannot be listed fails the pass, as a *RootAccessError.
// A cancelled ctx stops the walk between entries and returns ctx.Err().
func (g *Gatherer) Gather(ctx context.Context, root string) (Manifest, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &RootAccessError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &RootAccessError{Root: root, Err: ErrNotDirectory}
	}

	// WalkDir does not descend into a symlinked root unless the path ends
	// in a separator.
	walkRoot := root
	if lst, err := os.Lstat(root); err == nil && lst.Mode()&fs.ModeSymlink != 0 {
		walkRoot = root + string(filepath.Separator)
	}

	p := &pass{root: root, manifest: Manifest{}}
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == walkRoot {
				return &RootAccessError{Root: root, Err: err}
			}
			g.logger.Debug("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		g.visit(p, path, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.manifest, nil
}

func (g *Gatherer) visit(p *pass, path string, d fs.DirEntry) {
	mode := d.Type()
	switch {
	case mode.IsRegular():
	case mode&fs.ModeSymlink != 0:
		// Follow links to regular files only; stat before open so a link to
		// a fifo never blocks the walk.
		st, err := os.Stat(path)
		if err != nil {
			g.logger.Debug("Skipping broken link", zap.String("path", path), zap.Error(err))
			return
		}
		if !st.Mode().IsRegular() {
			return
		}
	default:
		return
	}

	f, err := g.open(path)
	if err != nil {
		g.logger.Debug("Skipping unreadable file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	docType := g.classifier.Classify(f)
	if !docType.Recognized() {
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		g.logger.Debug("Skipping file after rewind failure", zap.String("path", path), zap.Error(err))
		return
	}
	sum, err := Hash(f)
	if err != nil {
		g.logger.Debug("Skipping file after hash failure", zap.String("path", path), zap.Error(err))
		return
	}

	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		rel = path
	}
	g.logger.Info("File Gatherer found",
		zap.String("path", rel),
		zap.String("type", docType.String()),
		zap.String("hash", sum))

	stamp := g.now().UnixMilli()
	if stamp < p.lastStamp {
		stamp = p.lastStamp
	}
	p.lastStamp = stamp

	dir := filepath.Dir(path)
	p.manifest[dir] = append(p.manifest[dir], ScannedFile{
		Name:          d.Name(),
		ContentHash:   sum,
		ScanTimestamp: stamp,
		DocumentType:  docType,
	})
}
