package commentvars

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"

	"github.com/tokmz/commentvars/pkg/config"
	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/loader"
	"github.com/tokmz/commentvars/pkg/logger"
	"github.com/tokmz/commentvars/pkg/resolver"
	"github.com/tokmz/commentvars/pkg/variant"
)

const settingsYAML = `
data: comments.yaml
`

const commentsYAML = `
greet: Hi.
farewell: Bye.
both: $COMMENT#GREET $COMMENT#FAREWELL
hello: GREET
nested:
  deep: Deep value.
`

// recorder 记录日志条目
type recorder struct {
	mu      sync.Mutex
	entries []zapcore.Entry
}

func (r *recorder) OnWrite(entry zapcore.Entry, _ []zapcore.Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recorder) count(level zapcore.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (r *recorder) messages(level zapcore.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	l, err := logger.NewWithOptions(logger.WithWriter(io.Discard), logger.WithLevel(logger.DebugLevel), logger.WithHook(rec))
	require.NoError(t, err)

	e, err := New(append([]Option{WithLogger(l), WithDebounce(20 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, rec
}

func TestNewRequiresSettings(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestLoadSingle(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	writeFile(t, dir, "comments.yaml", commentsYAML)

	e, rec := newEngine(t, WithConfigFile(cfg))
	assert.Nil(t, e.Snapshot())

	snap, err := e.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	_, err = uuid.Parse(snap.Revision)
	assert.NoError(t, err)
	assert.False(t, snap.LoadedAt.IsZero())
	assert.Equal(t, map[string]string{"": filepath.Join(dir, "comments.yaml")}, snap.Files)
	assert.Nil(t, snap.Overlay)
	assert.Empty(t, snap.Issues)
	assert.Same(t, snap, e.Snapshot())

	tests := []struct {
		key  resolver.Key
		want string
	}{
		{"GREET", "Hi."},
		{"BOTH", "Hi. Bye."},
		{"HELLO", "Hi."},
		{"NESTED#DEEP", "Deep value."},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			v, ok := e.Lookup(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	key, ok := snap.KeyFor("Hi. Bye.")
	require.True(t, ok)
	assert.Equal(t, resolver.Key("BOTH"), key)

	assert.Contains(t, rec.messages(zapcore.InfoLevel), "dictionary loaded")
	assert.Zero(t, rec.count(zapcore.ErrorLevel))
}

func TestLookupBeforeLoad(t *testing.T) {
	e, _ := newEngine(t, WithSettings(&config.Settings{Data: "comments.yaml"}))
	_, ok := e.Lookup("GREET")
	assert.False(t, ok)
}

func TestLoadAppliesLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML+"log_level: warn\n")
	writeFile(t, dir, "comments.yaml", commentsYAML)

	e, rec := newEngine(t, WithConfigFile(cfg))
	_, err := e.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, logger.WarnLevel, e.log.Level())
	assert.NotContains(t, rec.messages(zapcore.InfoLevel), "dictionary loaded")
}

func TestLoadWithSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dicts/comments.yaml", commentsYAML)

	e, _ := newEngine(t,
		WithSettings(&config.Settings{Data: "dicts/comments.yaml", MaxDepth: resolver.DefaultMaxDepth, AllowPlaceholderKey: true}),
		WithBaseDir(dir),
	)
	snap, err := e.Load(context.Background())
	require.NoError(t, err)

	v, ok := snap.Lookup("FAREWELL")
	require.True(t, ok)
	assert.Equal(t, "Bye.", v)
}

func TestLoadInvalidSettings(t *testing.T) {
	e, rec := newEngine(t, WithSettings(&config.Settings{}))
	_, err := e.Load(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidSettings)
	assert.Nil(t, e.Snapshot())
	assert.Contains(t, rec.messages(zapcore.ErrorLevel), "dictionary load failed")
}

func TestLoadMissingDictionary(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)

	e, _ := newEngine(t, WithConfigFile(cfg))
	_, err := e.Load(context.Background())
	assert.ErrorIs(t, err, loader.ErrFileNotFound)
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	writeFile(t, dir, "comments.yaml", commentsYAML)

	e, rec := newEngine(t, WithConfigFile(cfg))
	good, err := e.Load(context.Background())
	require.NoError(t, err)

	writeFile(t, dir, "comments.yaml", "a: Same.\nb: Same.\n")
	_, err = e.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolveFailed)
	assert.ErrorIs(t, err, resolver.ErrDuplicateValue)

	assert.Same(t, good, e.Snapshot())
	v, ok := e.Lookup("GREET")
	require.True(t, ok)
	assert.Equal(t, "Hi.", v)

	// 一条诊断加一条失败汇总
	assert.Equal(t, 2, rec.count(zapcore.ErrorLevel))
}

func TestLoadWarnings(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML+"composition_only: [missing]\n")
	writeFile(t, dir, "comments.yaml", commentsYAML)

	e, rec := newEngine(t, WithConfigFile(cfg))
	snap, err := e.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Warnings(), 1)
	assert.ErrorIs(t, snap.Warnings()[0], resolver.ErrUnusedCompositionOnlyKey)
	assert.Equal(t, 1, rec.count(zapcore.WarnLevel))
}

const variationsYAML = `
variations:
  dir: comments
  pattern: "{variant}.yaml"
  reference: en
  active: fr
  variants:
    - name: en
    - name: fr
      allow_incomplete: true
`

func TestLoadVariations(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", variationsYAML)
	writeFile(t, dir, "comments/en.yaml", "greet: Hi.\nfarewell: Bye.\n")
	writeFile(t, dir, "comments/fr.yaml", "greet: Salut.\n")

	e, rec := newEngine(t, WithConfigFile(cfg))
	snap, err := e.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Overlay)

	// 激活变体 fr 去掉命名空间后直接查找
	v, ok := snap.Lookup("GREET")
	require.True(t, ok)
	assert.Equal(t, "Salut.", v)

	en, ok := snap.Variant("en")
	require.True(t, ok)
	v, ok = en.Lookup("FAREWELL")
	require.True(t, ok)
	assert.Equal(t, "Bye.", v)

	_, ok = snap.Variant("de")
	assert.False(t, ok)

	names := make([]string, 0, 2)
	for _, vv := range snap.Variants() {
		names = append(names, vv.Name)
	}
	assert.Equal(t, []string{"en", "fr"}, names)
	assert.Equal(t, "English", snap.Overlay.Label("en"))

	// fr 缺少 FAREWELL，被容忍为 warning
	require.Len(t, snap.Warnings(), 1)
	assert.ErrorIs(t, snap.Warnings()[0], variant.ErrKeyMismatch)
	assert.Equal(t, 1, rec.count(zapcore.WarnLevel))
}

func TestLoadVariationsMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", `
variations:
  reference: en
  variants:
    - name: en
    - name: fr
`)
	writeFile(t, dir, "en.yaml", "greet: Hi.\nfarewell: Bye.\n")
	writeFile(t, dir, "fr.yaml", "greet: Salut.\n")

	e, _ := newEngine(t, WithConfigFile(cfg))
	_, err := e.Load(context.Background())
	assert.ErrorIs(t, err, ErrResolveFailed)
	assert.ErrorIs(t, err, variant.ErrKeyMismatch)
	assert.Nil(t, e.Snapshot())
}

// memoryLoader 内存字典加载器
type memoryLoader map[string]*dictionary.Dictionary

func (m memoryLoader) Load(_ context.Context, variants []string) (map[string]*dictionary.Dictionary, error) {
	out := make(map[string]*dictionary.Dictionary, len(variants))
	for _, v := range variants {
		out[v] = m[v]
	}
	return out, nil
}

func TestCustomLoader(t *testing.T) {
	d := dictionary.New().Set("greet", "Hi.").Set("alias", "greet")

	e, _ := newEngine(t,
		WithSettings(&config.Settings{Data: "unused.yaml", AllowPlaceholderKey: true}),
		WithLoader(memoryLoader{"": d}),
	)
	snap, err := e.Load(context.Background())
	require.NoError(t, err)

	v, ok := snap.Lookup("ALIAS")
	require.True(t, ok)
	assert.Equal(t, "Hi.", v)
}

func TestOnReload(t *testing.T) {
	var got []*Snapshot
	e, _ := newEngine(t,
		WithSettings(&config.Settings{Data: "unused.yaml"}),
		WithLoader(memoryLoader{"": dictionary.New().Set("greet", "Hi.")}),
		WithOnReload(func(s *Snapshot) { got = append(got, s) }),
	)

	first, err := e.Load(context.Background())
	require.NoError(t, err)
	second, err := e.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])
	assert.NotEqual(t, first.Revision, second.Revision)
}

func TestConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	writeFile(t, dir, "comments.yaml", commentsYAML)

	e, _ := newEngine(t, WithConfigFile(cfg))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := e.Load(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, snap)
			_, _ = e.Lookup("GREET")
		}()
	}
	wg.Wait()
	assert.NotNil(t, e.Snapshot())
}

func TestWatchBeforeLoad(t *testing.T) {
	e, _ := newEngine(t, WithSettings(&config.Settings{Data: "comments.yaml"}))
	assert.ErrorIs(t, e.Watch(context.Background()), ErrNotLoaded)
	assert.False(t, e.IsWatching())
}

func TestWatchReloadsDictionary(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	path := writeFile(t, dir, "comments.yaml", commentsYAML)

	e, _ := newEngine(t, WithConfigFile(cfg))
	first, err := e.Load(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.Watch(ctx))
	require.NoError(t, e.Watch(ctx))
	assert.True(t, e.IsWatching())

	require.NoError(t, os.WriteFile(path, []byte("greet: Hello again.\n"), 0o644))

	require.Eventually(t, func() bool {
		v, _ := e.Lookup("GREET")
		return v == "Hello again."
	}, 3*time.Second, 20*time.Millisecond)
	assert.NotEqual(t, first.Revision, e.Snapshot().Revision)

	require.NoError(t, e.StopWatch())
	assert.False(t, e.IsWatching())
	require.NoError(t, e.StopWatch())
}

func TestWatchKeepsSnapshotOnBadEdit(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	path := writeFile(t, dir, "comments.yaml", commentsYAML)

	e, rec := newEngine(t, WithConfigFile(cfg))
	good, err := e.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.Watch(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("a: Same.\nb: Same.\n"), 0o644))

	require.Eventually(t, func() bool {
		return rec.count(zapcore.ErrorLevel) > 0
	}, 3*time.Second, 20*time.Millisecond)
	assert.Same(t, good, e.Snapshot())
}

func TestWatchReloadsSettings(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	writeFile(t, dir, "comments.yaml", commentsYAML)
	writeFile(t, dir, "other.yaml", "greet: From other file.\n")

	e, _ := newEngine(t, WithConfigFile(cfg))
	_, err := e.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.Watch(context.Background()))

	require.NoError(t, os.WriteFile(cfg, []byte("data: other.yaml\n"), 0o644))

	require.Eventually(t, func() bool {
		v, _ := e.Lookup("GREET")
		return v == "From other file."
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, filepath.Join(dir, "other.yaml"), e.Snapshot().Files[""])
}

func TestClose(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	writeFile(t, dir, "comments.yaml", commentsYAML)

	e, _ := newEngine(t, WithConfigFile(cfg))
	_, err := e.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.Watch(context.Background()))

	require.NoError(t, e.Close())
	assert.False(t, e.IsWatching())
	assert.NoError(t, e.Close())

	_, err = e.Load(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, e.Watch(context.Background()), ErrClosed)

	// 关闭后仍可读取最后的快照
	v, ok := e.Lookup("GREET")
	require.True(t, ok)
	assert.Equal(t, "Hi.", v)
}

func TestLoadSpans(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "commentvars.yaml", settingsYAML)
	writeFile(t, dir, "comments.yaml", commentsYAML)

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	e, _ := newEngine(t, WithConfigFile(cfg), WithTracerProvider(tp))
	snap, err := e.Load(context.Background())
	require.NoError(t, err)

	names := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans.Ended() {
		names[s.Name()] = s
	}
	require.Contains(t, names, "commentvars.Load")
	assert.Contains(t, names, "commentvars.ReadDictionaries")
	assert.Contains(t, names, "commentvars.Resolve")

	load := names["commentvars.Load"]
	assert.Equal(t, codes.Ok, load.Status().Code)
	assert.Contains(t, load.Attributes(), attribute.String("commentvars.revision", snap.Revision))

	writeFile(t, dir, "comments.yaml", "a: Same.\nb: Same.\n")
	_, err = e.Load(context.Background())
	require.Error(t, err)

	last := spans.Ended()[len(spans.Ended())-1]
	assert.Equal(t, "commentvars.Load", last.Name())
	assert.Equal(t, codes.Error, last.Status().Code)
}
