package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/isesword/cider-bridge/batch"
)

var errNoCgo = errors.New("the C data interface requires cgo (set CGO_ENABLED=1)")

// Option configures a Bridge.
type Option func(*options)

type options struct {
	alloc  *batch.Allocator
	logger log.Logger
	abi    uint32
}

func defaultOptions() options {
	return options{
		alloc:  batch.DefaultAllocator(),
		logger: log.NewNopLogger(),
		abi:    ABIVersion,
	}
}

// WithAllocator sets the allocator that owns imported result trees.
func WithAllocator(alloc *batch.Allocator) Option {
	return func(o *options) { o.alloc = alloc }
}

// WithLogger sets the logger for engine calls.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithABIVersion overrides the ABI version the library must report.
func WithABIVersion(v uint32) Option {
	return func(o *options) { o.abi = v }
}

// resolveLibPath 优先级：参数 > 配置/环境变量 > 可执行文件目录
func resolveLibPath(libPath string) (string, error) {
	if libPath == "" {
		cfg, err := LoadConfig("")
		if err != nil {
			return "", err
		}
		libPath = cfg.LibPath
	}
	if libPath == "" {
		exePath, err := os.Executable()
		if err != nil {
			return "", errors.Wrap(err, "failed to get executable path")
		}
		libPath = filepath.Join(filepath.Dir(exePath), getLibName())
	}
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return "", errors.Newf("library not found: %s", libPath)
	}
	return libPath, nil
}

func getLibName() string {
	switch runtime.GOOS {
	case "windows":
		return "cider_bridge.dll"
	case "darwin":
		return "libcider_bridge.dylib"
	default:
		return "libcider_bridge.so"
	}
}

func checkABI(got, want uint32) error {
	if got != want {
		return ErrAbiMismatch.Err(fmt.Sprintf("expected %d, got %d", want, got))
	}
	return nil
}

// Result is the output of ExecuteBatch. The batch borrows Schema and Array,
// Release frees both.
type Result struct {
	Schema *batch.Schema
	Array  *batch.Array
	Batch  batch.Batch
}

// Release releases the result trees.
func (r *Result) Release() {
	r.Array.Release()
	r.Schema.Release()
}

// ExecuteBatch runs a compiled plan over one input batch. schema and array are
// moved into the engine: the caller must not use or release them afterwards,
// whether ExecuteBatch succeeds or fails. If the inputs cannot be exported both
// are released before the error returns. The returned Result is owned by the
// caller.
func (b *Bridge) ExecuteBatch(handle uint64, schema *batch.Schema, array *batch.Array) (*Result, error) {
	inSchema, inArray := &ArrowSchema{}, &ArrowArray{}
	if err := ExportSchema(schema, inSchema); err != nil {
		array.Release()
		schema.Release()
		return nil, err
	}
	if err := ExportArray(array, inArray); err != nil {
		// releases schema through the export
		ReleaseArrowSchema(inSchema)
		array.Release()
		return nil, err
	}
	// whatever the engine did not take is released here
	defer ReleaseArrowSchema(inSchema)
	defer ReleaseArrowArray(inArray)

	outSchema, outArray, err := b.ExecuteArrow(handle, inSchema, inArray)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute plan")
	}

	s, err := ImportSchema(b.opts.alloc, outSchema)
	if err != nil {
		ReleaseArrowArray(outArray)
		return nil, err
	}
	a, err := ImportArray(b.opts.alloc, outArray, s)
	if err != nil {
		s.Release()
		return nil, err
	}
	out, err := batch.CreateBatch(s, a)
	if err != nil {
		a.Release()
		s.Release()
		return nil, errors.Wrap(err, "failed to wrap engine result")
	}
	_ = level.Debug(b.opts.logger).Log("msg", "executed plan", "handle", handle, "rows", out.Len())
	return &Result{Schema: s, Array: a, Batch: out}, nil
}
