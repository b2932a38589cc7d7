// Package watch reports changes below the skills directory, coalescing
// bursts of file events into a single change per quiet period.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/pkg/errors"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 300 * time.Millisecond

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Change is a coalesced set of file events.
type Change struct {
	// Skills holds the affected skill directory names, sorted.
	Skills []string
	// Paths holds the changed paths, sorted.
	Paths []string
}

// Handler is called for every change. Returning an error stops the watcher.
type Handler func(ctx context.Context, change Change) error

// Watcher watches a skills directory recursively.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	dirs     map[string]bool
}

// New creates a watcher on root and every non-hidden directory below it.
func New(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to watch %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	root = filepath.Clean(root)
	w := &Watcher{root: root, debounce: debounce, fsw: fsw, dirs: map[string]bool{}}
	if err := w.addTree(context.Background(), root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.dirs[path] = true
		logger.G(ctx).WithField("directory", path).Debug("adding directory to watcher")
		return errors.Wrapf(w.fsw.Add(path), "failed to watch %s", path)
	})
}

// skillOf returns the skill directory a path belongs to, or "" for files
// directly in the root and for hidden entries.
func (w *Watcher) skillOf(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if parts[0] == "." || parts[0] == ".." || strings.HasPrefix(parts[0], ".") {
		return ""
	}
	if len(parts) == 1 && !w.dirs[path] {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return ""
		}
	}
	return parts[0]
}

// Run delivers changes to handle until ctx is cancelled or handle fails.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	log := logger.G(ctx).WithField("skills_dir", w.root)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	skills := map[string]bool{}
	paths := map[string]bool{}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			log.WithField("file", event.Name).WithField("operation", event.Op.String()).Debug("file change detected")

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
					if err := w.addTree(ctx, event.Name); err != nil {
						log.WithError(err).Warn("failed to watch new directory")
					}
				}
			}

			paths[event.Name] = true
			if skill := w.skillOf(event.Name); skill != "" {
				skills[skill] = true
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("error watching files")

		case <-fire:
			fire = nil
			change := Change{Skills: keys(skills), Paths: keys(paths)}
			skills, paths = map[string]bool{}, map[string]bool{}

			if err := handle(ctx, change); err != nil {
				return err
			}
		}
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
