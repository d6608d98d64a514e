package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tokmz/commentvars"
	"github.com/tokmz/commentvars/pkg/logger"
	"github.com/tokmz/commentvars/pkg/tracing"
)

func main() {
	settings := "example/commentvars.yaml"
	if len(os.Args) > 1 {
		settings = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============ 1. 链路追踪（COMMENTVARS_TRACE=stdout 时输出 Span） ============
	tcfg := tracing.DefaultConfig()
	tcfg.Exporter = tracing.ExporterNoop
	if exp := os.Getenv("COMMENTVARS_TRACE"); exp != "" {
		tcfg.Exporter = exp
	}
	shutdown, err := tracing.Setup(ctx, tcfg)
	if err != nil {
		log.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer shutdown(context.Background())

	// ============ 2. 引擎 ============
	l, err := logger.NewDevelopment()
	if err != nil {
		log.Fatalf("创建日志失败: %v", err)
	}

	engine, err := commentvars.New(
		commentvars.WithConfigFile(settings),
		commentvars.WithEnvPrefix("COMMENTVARS"),
		commentvars.WithLogger(l),
		commentvars.WithOnReload(printSnapshot),
	)
	if err != nil {
		log.Fatalf("创建引擎失败: %v", err)
	}
	defer engine.Close()

	// 首次加载失败时没有可用的快照，直接退出
	if _, err := engine.Load(ctx); err != nil {
		log.Fatalf("加载字典失败: %v", err)
	}

	// ============ 3. 监听变更，直到 Ctrl+C ============
	if err := engine.Watch(ctx); err != nil {
		log.Fatalf("监听失败: %v", err)
	}
	fmt.Println("\n修改字典文件后会自动重新加载，按 Ctrl+C 退出")
	<-ctx.Done()
}

func printSnapshot(s *commentvars.Snapshot) {
	fmt.Printf("\n=== 快照 %s ===\n", s.Revision)
	for _, key := range s.Tables.Keys() {
		v, _ := s.Lookup(key)
		kind, _ := s.Tables.Kind(key)
		fmt.Printf("%-14s %-9s %s\n", key, kind, v)
	}

	fmt.Println("\n=== 替换顺序（长文本优先） ===")
	for _, e := range s.Tables.Reversed.ByLength() {
		if s.Tables.Skip(e.Key) {
			continue
		}
		fmt.Printf("%q -> %s\n", e.Value, e.Key.Placeholder())
	}

	for _, v := range s.Variants() {
		fmt.Printf("变体 %s (%s)\n", v.Name, v.Label)
	}
	for _, w := range s.Warnings() {
		fmt.Printf("warning: %s\n", w.Message)
	}
}
