package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/isesword/cider-bridge/batch"
	"github.com/isesword/cider-bridge/bridge"
	"github.com/isesword/cider-bridge/operators"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Optional config file (lib_path, abi_version, log_level)")
	flag.Parse()

	cfg, err := bridge.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, levelOption(cfg.LogLevel))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	reg := prometheus.NewRegistry()
	alloc := batch.NewAllocator(
		batch.WithLogger(logger),
		batch.WithMetrics(batch.NewMetrics(reg)),
		batch.WithMemory(bufferMemory()),
	)

	if err := run(cfg, alloc, logger); err != nil {
		level.Error(logger).Log("msg", "demo failed", "err", err)
		os.Exit(1)
	}
	printLiveDescriptors(reg)
}

func run(cfg *bridge.Config, alloc *batch.Allocator, logger log.Logger) error {
	// 1. 定义输入列
	node := operators.NewSourceNode(
		operators.Col("id", batch.NewTypeInfo(batch.BigInt, true)),
		operators.Col("score", batch.NewTypeInfo(batch.Double, false)),
		operators.Col("active", batch.NewTypeInfo(batch.Boolean, true)),
	).WithLogger(logger)

	s, err := node.Schema(alloc)
	if err != nil {
		return err
	}

	// 2. 填充数据
	a, err := buildInput(alloc, s)
	if err != nil {
		s.Release()
		return err
	}

	// 3. 经过 translator 生成 batch
	sink := &operators.CollectTranslator{}
	translator := node.ToTranslator(sink).(*operators.SourceTranslator)
	if err := translator.ConsumeDescriptors(s, a); err != nil {
		a.Release()
		s.Release()
		return err
	}
	for _, b := range sink.Batches() {
		if err := printBatch("input", b); err != nil {
			a.Release()
			s.Release()
			return err
		}
	}

	if cfg.LibPath == "" {
		level.Info(logger).Log("msg", "no engine library configured, skipping execution")
		a.Release()
		s.Release()
		return nil
	}

	// 4. 交给原生引擎执行，输入所有权转移
	return execute(cfg, alloc, logger, node, s, a)
}

func buildInput(alloc *batch.Allocator, s *batch.Schema) (*batch.Array, error) {
	ids, err := batch.NewColumn([]int64{1, 2, 3, 4})
	if err != nil {
		return nil, err
	}
	a, b := 71.5, 98.0
	scores, err := batch.NewColumn([]*float64{&a, nil, &b, nil})
	if err != nil {
		return nil, err
	}
	active, err := batch.NewColumn([]bool{true, false, true, true})
	if err != nil {
		return nil, err
	}
	col, err := batch.NewStructColumn(ids, scores, active)
	if err != nil {
		return nil, err
	}
	return alloc.BuildArray(s, col)
}

func execute(
	cfg *bridge.Config,
	alloc *batch.Allocator,
	logger log.Logger,
	node *operators.SourceNode,
	s *batch.Schema,
	a *batch.Array,
) error {
	brg, err := bridge.LoadBridge(cfg.LibPath,
		bridge.WithAllocator(alloc),
		bridge.WithLogger(logger),
		bridge.WithABIVersion(cfg.ABIVersion),
	)
	if err != nil {
		a.Release()
		s.Release()
		return err
	}

	engineVer, err := brg.EngineVersion()
	if err != nil {
		a.Release()
		s.Release()
		return err
	}
	level.Info(logger).Log("msg", "engine loaded", "abi", brg.AbiVersion(), "version", engineVer)

	planBytes, err := operators.EncodePlan(node)
	if err != nil {
		a.Release()
		s.Release()
		return err
	}
	handle, err := brg.CompilePlan(planBytes)
	if err != nil {
		a.Release()
		s.Release()
		return err
	}
	defer brg.FreePlan(handle)

	res, err := brg.ExecuteBatch(handle, s, a)
	if err != nil {
		return err
	}
	defer res.Release()
	return printBatch("output", res.Batch)
}

func printBatch(label string, b batch.Batch) error {
	arr, err := batch.ToArrow(b)
	if err != nil {
		return err
	}
	defer arr.Release()
	fmt.Printf("%s (%d rows, %s):\n  %v\n", label, b.Len(), arr.DataType(), arr)
	return nil
}

func printLiveDescriptors(reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		return
	}
	for _, mf := range families {
		if mf.GetName() != "cider_bridge_descriptors_live" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				fmt.Printf("live %s descriptors: %v\n", l.GetValue(), m.GetGauge().GetValue())
			}
		}
	}
}

func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
