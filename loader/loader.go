// Package loader reads journal files from disk, optionally following their
// include directives.
//
// The loader supports two modes of operation:
//   - Simple mode: Parses a single file with include items preserved in the document
//   - Follow mode: Recursively loads all included files and splices their items
//     in place of the include that named them
//
// When following includes, paths are resolved from the directory of the file
// containing the include, glob patterns are expanded, and every file is loaded
// at most once. Including a file twice, or in a cycle, is therefore harmless.
//
// Example usage:
//
//	// Load a single file without following includes
//	ldr := loader.New()
//	result, err := ldr.Load(ctx, "main.ledger")
//
//	// Load with recursive include resolution
//	ldr := loader.New(loader.WithFollowIncludes())
//	result, err := ldr.Load(ctx, "main.ledger")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/parser"
	"github.com/robinvdvleuten/ledger-parser/telemetry"
)

// Loader handles loading and parsing of journal files with optional include resolution.
//
// Configure the loader using functional options passed to New:
//
//	ldr := New(WithFollowIncludes(), WithLogger(logger))
type Loader struct {
	// FollowIncludes determines whether to recursively load included files.
	// When false, only the specified file is parsed and include items are kept.
	// When true, include items are replaced by the items of the files they name.
	FollowIncludes bool

	logger   *zap.Logger
	debounce time.Duration
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to recursively load and splice all included files.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// WithLogger sets the logger used to report loaded and skipped files.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDebounce sets how long Watch waits for changes to settle before reloading.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		l.debounce = d
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Result is a loaded document together with the files it came from.
type Result struct {
	Document *ast.Document

	// Root is the absolute path of the file passed to Load, or the name
	// given to LoadBytes.
	Root string

	// Includes lists the absolute paths of every included file, in the
	// order they were loaded. It is empty unless includes are followed.
	Includes []string

	// sources maps the filename recorded in positions to the file content.
	sources map[string]string
}

// Source returns the content of a loaded file by the filename its
// positions carry.
func (r *Result) Source(filename string) (string, bool) {
	src, ok := r.sources[filename]
	return src, ok
}

// Files returns the root followed by every included file.
func (r *Result) Files() []string {
	return append([]string{r.Root}, r.Includes...)
}

// Load parses a journal file with optional recursive include resolution.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("loader.load " + filepath.Base(filename))
	defer timer.End()

	root, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	state := l.newState(root)
	items, err := state.load(ctx, filename, root)
	if err != nil {
		return nil, err
	}

	state.result.Document = &ast.Document{Items: items}
	return state.result, nil
}

// LoadBytes parses data that did not come from a file, such as standard
// input. Relative includes resolve from the working directory.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("loader.load " + filename)
	defer timer.End()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	state := l.newState(filename)
	state.visited[filename] = true
	items, err := state.parse(ctx, filename, filepath.Join(cwd, filename), data)
	if err != nil {
		return nil, err
	}

	state.result.Document = &ast.Document{Items: items}
	return state.result, nil
}

func (l *Loader) newState(root string) *loaderState {
	return &loaderState{
		logger:  l.logger,
		follow:  l.FollowIncludes,
		visited: make(map[string]bool),
		result: &Result{
			Root:    root,
			sources: make(map[string]string),
		},
	}
}

// loaderState tracks state during recursive loading.
type loaderState struct {
	logger  *zap.Logger
	follow  bool
	visited map[string]bool // Absolute paths of files already loaded
	result  *Result
}

// load reads and parses one file. When following includes, the items of
// included files are spliced in place of their include items.
func (s *loaderState) load(ctx context.Context, filename, absPath string) ([]ast.Item, error) {
	if s.visited[absPath] {
		s.logger.Debug("skipping already loaded file", zap.String("path", absPath))
		return nil, nil
	}
	s.visited[absPath] = true

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return s.parse(ctx, filename, absPath, data)
}

// parse parses the content of one file. Includes resolve from the directory
// of absPath.
func (s *loaderState) parse(ctx context.Context, filename, absPath string, data []byte) ([]ast.Item, error) {
	s.result.sources[filename] = string(data)

	doc, err := parser.ParseBytesWithFilename(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded file", zap.String("path", absPath), zap.Int("items", len(doc.Items)))

	if !s.follow {
		return doc.Items, nil
	}

	baseDir := filepath.Dir(absPath)
	items := make([]ast.Item, 0, len(doc.Items))

	for _, item := range doc.Items {
		inc, ok := item.(*ast.Include)
		if !ok {
			items = append(items, item)
			continue
		}

		// Check for cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		paths, err := resolveInclude(baseDir, inc.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", inc.Pos, err)
		}

		for _, path := range paths {
			if !s.visited[path] {
				s.result.Includes = append(s.result.Includes, path)
			}
			included, err := s.load(ctx, path, path)
			if err != nil {
				return nil, fmt.Errorf("in file %s: %w", filename, err)
			}
			items = append(items, included...)
		}
	}

	return items, nil
}

// resolveInclude turns the path of an include item into absolute paths.
// Relative paths are resolved from the directory of the including file, and
// glob patterns expand to every matching file in lexical order.
func resolveInclude(baseDir, path string) ([]string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		path = filepath.Join(home, path[2:])
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	if !strings.ContainsAny(path, "*?[") {
		return []string{path}, nil
	}

	matches, err := filepath.Glob(path)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern %s: %w", path, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match include pattern %s", path)
	}
	return matches, nil
}
