// Package commentvars 把注释字典文件解析为可查找的表。
//
// Engine 读取设置文件，加载字典，运行解析流水线（或多变体叠加），
// 按严重级别记录诊断，并以原子方式替换当前快照。
// 加载失败时保留上一次成功的快照。
package commentvars

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tokmz/commentvars/pkg/config"
	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/errors"
	"github.com/tokmz/commentvars/pkg/loader"
	"github.com/tokmz/commentvars/pkg/logger"
	"github.com/tokmz/commentvars/pkg/resolver"
	"github.com/tokmz/commentvars/pkg/variant"
)

const tracerName = "commentvars"

type Engine struct {
	config   *Config
	settings *config.Config // 设置文件，直接提供 Settings 时为 nil
	log      logger.Logger
	tracer   trace.Tracer

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
	closed  atomic.Bool

	mu             sync.Mutex
	settingsLoaded bool
	watcher        *fsnotify.Watcher
	watchCtx       context.Context
	stopWatch      context.CancelFunc
	watchDone      chan struct{}
	watchedDirs    map[string]bool
	watchedFiles   map[string]bool
}

// New 创建 Engine，使用 Options 模式配置
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Settings == nil && cfg.ConfigFile == "" && cfg.ConfigName == "" {
		return nil, ErrNoSettings.WithMessage("one of ConfigFile, ConfigName or Settings is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	e := &Engine{
		config: cfg,
		log:    cfg.Logger,
		tracer: tp.Tracer(tracerName),
	}
	if e.log == nil {
		l, err := logger.NewProduction()
		if err != nil {
			l = logger.Nop()
		}
		e.log = l
	}
	e.log = e.log.Named("commentvars")

	if cfg.Settings == nil {
		copts := []config.Option{
			config.WithOnChange(e.onSettingsChange),
			config.WithOnError(e.onSettingsError),
		}
		if cfg.ConfigFile != "" {
			copts = append(copts, config.WithConfigFile(cfg.ConfigFile))
		} else {
			copts = append(copts, config.WithConfigName(cfg.ConfigName), config.WithConfigPaths(cfg.ConfigPaths...))
		}
		if cfg.EnvPrefix != "" {
			copts = append(copts, config.WithEnvPrefix(cfg.EnvPrefix))
		}
		e.settings = config.New(copts...)
	}
	return e, nil
}

// Snapshot 当前快照，尚未成功加载时为 nil
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Lookup 在当前快照中按键查找文本
func (e *Engine) Lookup(key resolver.Key) (string, bool) {
	s := e.current.Load()
	if s == nil {
		return "", false
	}
	return s.Lookup(key)
}

// Load 读取设置和字典并解析，成功后替换当前快照
// 并发调用合并为一次加载；失败时保留上一次成功的快照
func (e *Engine) Load(ctx context.Context) (*Snapshot, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	v, err, _ := e.group.Do("load", func() (any, error) {
		return e.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (e *Engine) load(ctx context.Context) (*Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "commentvars.Load")
	defer span.End()

	snap := &Snapshot{Revision: uuid.NewString()}
	ctx = logger.ContextWithFields(ctx, logger.Revision(snap.Revision))
	span.SetAttributes(attribute.String("commentvars.revision", snap.Revision))

	s, err := e.readSettings()
	if err != nil {
		return nil, e.fail(ctx, span, err)
	}
	if s.LogLevel != "" {
		lvl, _ := logger.ParseLevel(s.LogLevel)
		e.log.SetLevel(lvl)
	}
	snap.Files = s.Files(e.baseDir())

	names := []string{""}
	if s.Variations.Enabled() {
		names = s.Variations.Names()
	}
	span.SetAttributes(attribute.Int("commentvars.variants", len(s.Variations.Variants)))

	dicts, err := e.readDictionaries(ctx, snap.Files, names)
	if err != nil {
		return nil, e.fail(ctx, span, err)
	}

	_, rspan := e.tracer.Start(ctx, "commentvars.Resolve")
	var stage resolver.Stage
	if s.Variations.Enabled() {
		o := variant.ResolveWithOptions(variantOptions(s, dicts)...)
		snap.Overlay, snap.Issues, stage = o, o.Issues, o.FailedAt
		if o.OK() {
			snap.Tables, _ = o.ActiveView()
		}
	} else {
		res := resolver.ResolveWithOptions(dicts[""], s.ResolverOptions()...)
		snap.Issues, stage = res.Issues, res.FailedAt
		snap.Tables = res.Tables
	}
	rspan.SetAttributes(attribute.Int("commentvars.issues", len(snap.Issues)))
	rspan.End()

	e.logIssues(ctx, snap.Issues)
	if snap.Tables == nil {
		return nil, e.fail(ctx, span, resolveError(stage, snap.Issues))
	}

	snap.LoadedAt = time.Now()
	e.current.Store(snap)
	e.syncWatch(snap.Files)

	span.SetAttributes(attribute.Int("commentvars.entries", len(snap.Tables.Flattened)))
	span.SetStatus(codes.Ok, "")
	e.log.InfoContext(ctx, "dictionary loaded",
		zap.Int("entries", len(snap.Tables.Flattened)),
		zap.Int("aliases", len(snap.Tables.Aliases)),
		zap.Int("warnings", len(snap.Issues.Warnings())),
	)

	if e.config.OnReload != nil {
		e.config.OnReload(snap)
	}
	return snap, nil
}

// readSettings 首次读取设置文件，之后每次重新读取
func (e *Engine) readSettings() (*config.Settings, error) {
	if e.settings == nil {
		s := *e.config.Settings
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return &s, nil
	}

	e.mu.Lock()
	var err error
	if e.settingsLoaded {
		err = e.settings.Reload()
	} else if err = e.settings.Load(); err == nil {
		e.settingsLoaded = true
	}
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return e.settings.Settings()
}

func (e *Engine) readDictionaries(ctx context.Context, files map[string]string, names []string) (map[string]*dictionary.Dictionary, error) {
	ctx, span := e.tracer.Start(ctx, "commentvars.ReadDictionaries")
	defer span.End()

	l := e.config.Loader
	if l == nil {
		l = loader.Files(files)
	}
	dicts, err := l.Load(ctx, names)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return dicts, nil
}

// baseDir 相对路径的基准目录
func (e *Engine) baseDir() string {
	if e.config.BaseDir != "" {
		return e.config.BaseDir
	}
	if e.settings != nil {
		if used := e.settings.ConfigFileUsed(); used != "" {
			return filepath.Dir(used)
		}
	}
	return ""
}

// fail 记录失败并保留上一次成功的快照
func (e *Engine) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	fields := []zap.Field{zap.Error(err)}
	if prev := e.current.Load(); prev != nil {
		fields = append(fields, zap.String("keeping", prev.Revision))
	}
	e.log.ErrorContext(ctx, "dictionary load failed", fields...)
	return err
}

// logIssues error 级别记为 Error，warning 级别记为 Warn
func (e *Engine) logIssues(ctx context.Context, issues errors.List) {
	for _, issue := range issues {
		if issue.IsWarning() {
			e.log.WarnContext(ctx, issue.Message, logger.Issue(issue))
			continue
		}
		e.log.ErrorContext(ctx, issue.Message, logger.Issue(issue))
	}
}

func resolveError(stage resolver.Stage, issues errors.List) error {
	errs := issues.Errors()
	err := ErrResolveFailed.
		WithError(issues).
		WithMessage(fmt.Sprintf("dictionary resolution failed before stage %s with %d error(s)", stage, len(errs)))
	if len(errs) > 0 {
		err.Kind = errs[0].Kind
	}
	return err
}

// variantOptions 组装变体叠加选项
func variantOptions(s *config.Settings, dicts map[string]*dictionary.Dictionary) []variant.Option {
	v := s.Variations
	opts := s.VariantOptions()
	for _, vs := range v.Variants {
		opts = append(opts, variant.WithVariants(variant.Variant{
			Name:            vs.Name,
			Label:           vs.Label,
			Data:            dicts[vs.Name],
			AllowIncomplete: vs.AllowIncomplete,
		}))
	}
	return append(opts, variant.WithReference(v.Reference, dicts[v.Reference]))
}

// Close 停止监听并释放资源，之后的 Load 返回 ErrClosed
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := e.StopWatch()
	if e.settings != nil {
		e.settings.Close()
	}
	_ = e.log.Sync()
	return err
}
