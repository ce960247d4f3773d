package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/fsnotify/fsnotify"
)

// rendererPool caches glamour renderers keyed by "style:width".
// Each key maps to a sync.Pool so concurrent goroutines get their own instance.
var (
	rendererPoolMu sync.Mutex
	rendererPools  = make(map[string]*sync.Pool)
)

func getRenderer(style string, width int) (*glamour.TermRenderer, error) {
	key := fmt.Sprintf("%s:%d", style, width)
	rendererPoolMu.Lock()
	pool, ok := rendererPools[key]
	if !ok {
		pool = &sync.Pool{}
		rendererPools[key] = pool
	}
	rendererPoolMu.Unlock()

	// Try to reuse a pooled renderer; create a new one on miss.
	if r, _ := pool.Get().(*glamour.TermRenderer); r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create renderer for %s: %w", key, err)
	}
	return r, nil
}

func putRenderer(style string, width int, r *glamour.TermRenderer) {
	key := fmt.Sprintf("%s:%d", style, width)
	rendererPoolMu.Lock()
	pool := rendererPools[key]
	rendererPoolMu.Unlock()
	if pool != nil {
		pool.Put(r)
	}
}

// glamourRender renders markdown for a card body. Glamour pads every block
// with margins; those are trimmed so the body hugs the card.
func glamourRender(markdown, style string, width int) string {
	if width < 10 {
		width = 10
	}
	r, err := getRenderer(style, width)
	if err != nil {
		return markdown
	}
	rendered, err := r.Render(markdown)
	putRenderer(style, width, r)
	if err != nil {
		return markdown
	}
	lines := strings.Split(strings.Trim(rendered, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(strings.TrimPrefix(l, "  "), " ")
	}
	return strings.Join(lines, "\n")
}

// ─── Commands ────────────────────────────────────────────────────────────────

// copyToClipboard is the action behind a toast's Copy button.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errMsg{fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{text: text}
	}
}

// upload is the result of a simulated file upload.
type upload struct {
	name string
	size int64
	took time.Duration
}

var errUploadRejected = errors.New("server rejected the file")

// fakeUpload returns an operation that takes took to finish and then
// succeeds or, when fail is set, is rejected.
func fakeUpload(name string, fail bool, took time.Duration) func(context.Context) (upload, error) {
	return func(ctx context.Context) (upload, error) {
		t := time.NewTimer(took)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return upload{}, fmt.Errorf("upload %s: %w", name, ctx.Err())
		case <-t.C:
		}
		if fail {
			return upload{}, fmt.Errorf("upload %s: %w", name, errUploadRejected)
		}
		return upload{name: name, size: int64(len(name)) * 48213, took: took}, nil
	}
}

// formatBytes renders n with a binary unit, e.g. "1.4 MiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "created"
	case op.Has(fsnotify.Remove):
		return "removed"
	case op.Has(fsnotify.Rename):
		return "renamed"
	}
	return "written"
}

// ignoredFile skips editor swap files and dotfiles.
func ignoredFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp")
}

// watchDir watches a directory for file changes. It sends a fileChangedMsg
// each time a write/create/remove/rename is detected, with a small debounce to
// coalesce rapid writes. The last operation seen for a file wins.
func watchDir(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ignoredFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
					continue
				}
				changed := map[string]string{filepath.Base(ev.Name): opName(ev.Op)}
				time.Sleep(100 * time.Millisecond)
			drain:
				for {
					select {
					case extra, ok := <-watcher.Events:
						if !ok {
							break drain
						}
						if !ignoredFile(extra.Name) && extra.Op != fsnotify.Chmod {
							changed[filepath.Base(extra.Name)] = opName(extra.Op)
						}
					default:
						break drain
					}
				}
				files := make([]fileChange, 0, len(changed))
				for f, op := range changed {
					files = append(files, fileChange{name: f, op: op})
				}
				sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
				return fileChangedMsg{files: files}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: fmt.Errorf("watch: %w", err)}
			}
		}
	}
}
