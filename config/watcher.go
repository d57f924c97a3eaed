package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observa o arquivo de configuração e chama o callback quando ele
// muda. Editores costumam gerar rajadas de eventos (write + chmod, ou
// rename ao salvar atomicamente), então os eventos são debounced antes do
// reload.
type Watcher struct {
	path     string
	onChange func(Config)
	logger   *zap.Logger
	debounce time.Duration
}

// WatcherOption configura um Watcher.
type WatcherOption func(*Watcher)

// WithDebounce troca a janela de debounce (default 200ms).
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher cria um watcher para o arquivo em path. onChange recebe a
// configuração recarregada; erros de parse são logados e a configuração
// anterior permanece em vigor.
func NewWatcher(path string, logger *zap.Logger, onChange func(Config), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run bloqueia até o contexto ser cancelado. Observa o diretório do arquivo
// (não o arquivo em si) para sobreviver a saves atômicos que trocam o inode.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-timerC:
			timerC = nil
			timer = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Error("config reload failed, keeping previous config", zap.Error(err))
				continue
			}
			w.logger.Info("config reloaded", zap.String("path", w.path))
			w.onChange(cfg)
		}
	}
}
