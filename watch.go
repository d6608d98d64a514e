package commentvars

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tokmz/commentvars/pkg/config"
)

// Watch 监听字典文件与设置文件，变更后自动重新加载
// 必须在首次 Load 成功后调用；ctx 取消或 Close 时停止
func (e *Engine) Watch(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed.Load() {
		return ErrClosed
	}
	if e.watcher != nil {
		return nil
	}
	snap := e.current.Load()
	if snap == nil {
		return ErrNotLoaded.WithMessage("load the dictionary before watching it")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatchFailed.WithError(err)
	}
	e.watcher = w
	e.watchedDirs = make(map[string]bool)
	e.watchedFiles = make(map[string]bool)
	e.syncWatchLocked(snap.Files)

	if e.settings != nil {
		if err := e.settings.StartWatch(); err != nil {
			e.log.Warn("settings file is not watched", zap.Error(err))
		}
	}

	e.watchCtx, e.stopWatch = context.WithCancel(ctx)
	e.watchDone = make(chan struct{})
	go e.watchLoop(e.watchCtx, w, e.watchDone)

	e.log.Info("watching dictionary files", zap.Strings("dirs", sortedSet(e.watchedDirs)))
	return nil
}

// StopWatch 停止监听，未在监听时无操作
func (e *Engine) StopWatch() error {
	e.mu.Lock()
	w, stop, done := e.watcher, e.stopWatch, e.watchDone
	e.watcher, e.stopWatch, e.watchDone = nil, nil, nil
	e.watchedDirs, e.watchedFiles = nil, nil
	e.mu.Unlock()

	if w == nil {
		return nil
	}
	if e.settings != nil {
		e.settings.StopWatch()
	}
	stop()
	err := w.Close()
	<-done
	return err
}

// IsWatching 是否正在监听
func (e *Engine) IsWatching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.watcher != nil
}

// watchLoop 合并 Debounce 时间内的变更事件后重新加载
func (e *Engine) watchLoop(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if !e.isWatched(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(e.config.Debounce)
			} else {
				timer.Reset(e.config.Debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			e.log.Warn("dictionary watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			e.reload(ctx, "dictionary changed")
		}
	}
}

// reload 由文件变更触发，错误已在 load 中记录
func (e *Engine) reload(ctx context.Context, reason string) {
	e.log.Debug("reloading", zap.String("reason", reason))
	_, _ = e.Load(ctx)
}

// onSettingsChange 设置文件变更（viper 已重新读取且设置合法）
func (e *Engine) onSettingsChange(s *config.Settings) {
	e.mu.Lock()
	ctx := e.watchCtx
	e.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	e.log.Info("settings changed", zap.Strings("variants", s.Variations.Names()))
	e.reload(ctx, "settings changed")
}

// onSettingsError 设置文件变更后不合法，保留当前快照
func (e *Engine) onSettingsError(err error) {
	e.log.Warn("settings change rejected", zap.Error(err))
}

// syncWatch 加载成功后更新监听的文件集合
func (e *Engine) syncWatch(files map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.watcher != nil {
		e.syncWatchLocked(files)
	}
}

// syncWatchLocked 监听文件所在目录，以便捕获编辑器的重命名写入
// 调用方必须已持有 mu 锁
func (e *Engine) syncWatchLocked(files map[string]string) {
	wantFiles := make(map[string]bool, len(files))
	wantDirs := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}
		wantFiles[abs] = true
		wantDirs[filepath.Dir(abs)] = true
	}

	for dir := range e.watchedDirs {
		if !wantDirs[dir] {
			_ = e.watcher.Remove(dir)
			delete(e.watchedDirs, dir)
		}
	}
	for dir := range wantDirs {
		if e.watchedDirs[dir] {
			continue
		}
		if err := e.watcher.Add(dir); err != nil {
			e.log.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		e.watchedDirs[dir] = true
	}
	e.watchedFiles = wantFiles
}

func (e *Engine) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = filepath.Clean(name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.watchedFiles[abs]
}

func sortedSet(m map[string]bool) []string {
	return slices.Sorted(maps.Keys(m))
}
