// internal/infra/config/watcher.go
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	shippingdom "modaorganica/internal/domain/shipping"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reloads the shipping section of the YAML file into a live Table.
// 他のセクションは再起動時のみ反映されます。
type Watcher struct {
	path     string
	table    *shippingdom.Table
	log      *zap.Logger
	debounce time.Duration
	onReload func(shippingdom.Rules)
}

func NewWatcher(path string, table *shippingdom.Table, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		table:    table,
		log:      logger.Named("config-watcher"),
		debounce: defaultDebounce,
	}
}

// WithDebounce overrides the quiet period between the last event and the reload.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// OnReload registers a callback invoked after each successful swap.
func (w *Watcher) OnReload(fn func(shippingdom.Rules)) *Watcher {
	w.onReload = fn
	return w
}

// Run blocks until ctx is done. The directory is watched so editors that
// replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching config", zap.String("path", w.path))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			stopTimer()
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("reload skipped", zap.Error(err))
		return
	}
	rules, err := cfg.Shipping.Rules()
	if err != nil {
		w.log.Warn("reload skipped", zap.Error(err))
		return
	}
	if err := w.table.Replace(rules); err != nil {
		w.log.Warn("reload rejected", zap.Error(err))
		return
	}
	w.log.Info("shipping rules reloaded",
		zap.Strings("localZones", rules.LocalZones),
		zap.String("local", rules.Costs.Local.String()),
		zap.String("national", rules.Costs.National.String()),
	)
	if w.onReload != nil {
		w.onReload(rules)
	}
}
