//go:build !windows
// +build !windows

package bridge

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/purego"
	"github.com/go-kit/log/level"
)

// Bridge 原生引擎 FFI 接口
type Bridge struct {
	lib              uintptr
	opts             options
	abiVersion       func() uint32
	engineVersion    func(*uintptr, *uintptr) int32
	capabilities     func(*uintptr, *uintptr) int32
	lastError        func(*uintptr, *uintptr) int32
	planCompile      func(*byte, uintptr, *uint64) int32
	planFree         func(uint64)
	planExecuteArrow func(uint64, *ArrowSchema, *ArrowArray, *ArrowSchema, *ArrowArray) int32
}

// LoadBridge 加载动态库
func LoadBridge(libPath string, opts ...Option) (*Bridge, error) {
	libPath, err := resolveLibPath(libPath)
	if err != nil {
		return nil, err
	}

	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load library %s", libPath)
	}

	b := &Bridge{lib: lib, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&b.opts)
	}

	// 加载所有函数
	purego.RegisterLibFunc(&b.abiVersion, lib, "bridge_abi_version")
	purego.RegisterLibFunc(&b.engineVersion, lib, "bridge_engine_version")
	purego.RegisterLibFunc(&b.capabilities, lib, "bridge_capabilities")
	purego.RegisterLibFunc(&b.lastError, lib, "bridge_last_error")
	purego.RegisterLibFunc(&b.planCompile, lib, "bridge_plan_compile")
	purego.RegisterLibFunc(&b.planFree, lib, "bridge_plan_free")
	purego.RegisterLibFunc(&b.planExecuteArrow, lib, "bridge_plan_execute_arrow")

	// 验证 ABI 版本
	if err := checkABI(b.AbiVersion(), b.opts.abi); err != nil {
		return nil, err
	}
	_ = level.Debug(b.opts.logger).Log("msg", "loaded engine", "path", libPath)
	return b, nil
}

// AbiVersion 获取 ABI 版本
func (b *Bridge) AbiVersion() uint32 {
	return b.abiVersion()
}

// EngineVersion 获取引擎版本
func (b *Bridge) EngineVersion() (string, error) {
	var ptr uintptr
	var length uintptr
	ret := b.engineVersion(&ptr, &length)
	if ret != 0 {
		return "", b.lastErr(ret)
	}
	return ptrToString(ptr, int(length)), nil
}

// Capabilities 获取能力信息
func (b *Bridge) Capabilities() (string, error) {
	var ptr uintptr
	var length uintptr
	ret := b.capabilities(&ptr, &length)
	if ret != 0 {
		return "", b.lastErr(ret)
	}
	return ptrToString(ptr, int(length)), nil
}

// CompilePlan 编译计划
func (b *Bridge) CompilePlan(planBytes []byte) (uint64, error) {
	if len(planBytes) == 0 {
		return 0, ErrInvalidArgument.Err("empty plan")
	}
	var handle uint64
	ret := b.planCompile(&planBytes[0], uintptr(len(planBytes)), &handle)
	runtime.KeepAlive(planBytes)

	if ret != 0 {
		return 0, b.lastErr(ret)
	}
	return handle, nil
}

// FreePlan 释放计划
func (b *Bridge) FreePlan(handle uint64) {
	b.planFree(handle)
}

// ExecuteArrow 执行计划并通过 Arrow C Data Interface 返回结果（零拷贝）。
// 输入的 schema/array 所有权会转移给引擎，调用方不要再释放它们。
// 调用方负责在消费完成后释放 outSchema/outArray（ReleaseArrowSchema/ReleaseArrowArray）。
func (b *Bridge) ExecuteArrow(
	handle uint64,
	inputSchema *ArrowSchema,
	inputArray *ArrowArray,
) (*ArrowSchema, *ArrowArray, error) {
	if !cgoEnabled {
		return nil, nil, errNoCgo
	}

	outSchema := &ArrowSchema{}
	outArray := &ArrowArray{}

	ret := b.planExecuteArrow(handle, inputSchema, inputArray, outSchema, outArray)
	if ret != 0 {
		return nil, nil, b.lastErr(ret)
	}

	return outSchema, outArray, nil
}

func (b *Bridge) lastErr(ret int32) error {
	var ptr uintptr
	var length uintptr
	b.lastError(&ptr, &length)
	return ErrorCode(ret).Err(ptrToString(ptr, int(length)))
}

func ptrToString(ptr uintptr, length int) string {
	if ptr == 0 || length == 0 {
		return ""
	}
	return strings.Clone(unsafe.String((*byte)(unsafe.Pointer(ptr)), length))
}
