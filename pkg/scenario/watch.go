package scenario

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/racesim-manager-go/log"
)

// Watch reloads the scenario file on every change and hands its events to
// the director. Invalid files are logged and skipped.
// The directory is watched since editors often replace files on save.
func Watch(ctx context.Context, path string, d *Director) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs ||
					!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				s, err := LoadFile(abs)
				if err != nil {
					d.l.Warn("ignoring scenario change", log.ErrorField(err))
					continue
				}
				d.Replace(s.Events)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				d.l.Warn("scenario watcher error", log.ErrorField(err))
			}
		}
	}()
	return nil
}
