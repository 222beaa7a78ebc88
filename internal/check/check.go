// Package check runs the sniffs over a tree of PHP files.
package check

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/shinyvision/sniffctx/internal/config"
	"github.com/shinyvision/sniffctx/internal/php"
	"github.com/shinyvision/sniffctx/internal/poscache"
	"github.com/shinyvision/sniffctx/internal/sniff"
	"github.com/shinyvision/sniffctx/internal/tracking"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var logger = commonlog.GetLoggerf("sniffctx.check")

// Result holds the outcome for one file.
type Result struct {
	Path       string
	Violations []sniff.Violation
	Err        error
}

type Checker struct {
	cfg   *config.Config
	store *php.DocumentStore
}

func New(cfg *config.Config) *Checker {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Checker{
		cfg:   cfg,
		store: php.NewDocumentStore(cfg.StoreSize),
	}
}

// Discover expands paths into the sorted list of files to check. Directories
// are walked applying the configured include and exclude patterns; files
// named explicitly are always kept. No paths means the configured root.
func (c *Checker) Discover(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{c.cfg.Root}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("could not stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warningf("skipping %s: %v", path, err)
				return nil
			}
			rel := c.cfg.Rel(path)
			if path != root && c.cfg.Excluded(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !c.cfg.Included(rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// Run checks files concurrently and returns one result per file, in the
// order given. Each worker owns its tracking context.
func (c *Checker) Run(ctx context.Context, files []string) ([]Result, error) {
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	runners := make(chan *sniff.Runner, workers)
	for range workers {
		cache := poscache.New()
		cache.SetEnabled(c.cfg.Cache.Enabled)
		runners <- sniff.NewRunner(tracking.NewContext(cache), sniff.Enabled(c.cfg.Sniffs.Disabled)...)
	}

	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			runner := <-runners
			defer func() { runners <- runner }()
			results[i] = c.checkFile(runner, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Checker) checkFile(runner *sniff.Runner, path string) Result {
	res := Result{Path: path}
	doc, err := c.store.Load(path)
	if err != nil {
		res.Err = fmt.Errorf("could not load %s: %w", path, err)
		return res
	}
	res.Violations, res.Err = runner.Run(doc.File())
	logger.Debugf("%s: %d violations", path, len(res.Violations))
	return res
}
