//go:build windows
// +build windows

package bridge

import (
	"runtime"
	"syscall"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log/level"
)

// Bridge 原生引擎 FFI 接口
type Bridge struct {
	lib              *syscall.DLL
	opts             options
	abiVersion       *syscall.Proc
	engineVersion    *syscall.Proc
	capabilities     *syscall.Proc
	lastError        *syscall.Proc
	planCompile      *syscall.Proc
	planFree         *syscall.Proc
	planExecuteArrow *syscall.Proc
}

// LoadBridge 加载动态库
func LoadBridge(libPath string, opts ...Option) (*Bridge, error) {
	libPath, err := resolveLibPath(libPath)
	if err != nil {
		return nil, err
	}

	lib, err := syscall.LoadDLL(libPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load library %s", libPath)
	}

	b := &Bridge{lib: lib, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&b.opts)
	}

	// 加载所有函数
	procs := []struct {
		dst  **syscall.Proc
		name string
	}{
		{&b.abiVersion, "bridge_abi_version"},
		{&b.engineVersion, "bridge_engine_version"},
		{&b.capabilities, "bridge_capabilities"},
		{&b.lastError, "bridge_last_error"},
		{&b.planCompile, "bridge_plan_compile"},
		{&b.planFree, "bridge_plan_free"},
		{&b.planExecuteArrow, "bridge_plan_execute_arrow"},
	}
	for _, p := range procs {
		if *p.dst, err = lib.FindProc(p.name); err != nil {
			return nil, errors.Wrapf(err, "failed to find %s", p.name)
		}
	}

	// 验证 ABI 版本
	if err := checkABI(b.AbiVersion(), b.opts.abi); err != nil {
		return nil, err
	}
	_ = level.Debug(b.opts.logger).Log("msg", "loaded engine", "path", libPath)
	return b, nil
}

// AbiVersion 获取 ABI 版本
func (b *Bridge) AbiVersion() uint32 {
	ret, _, _ := b.abiVersion.Call()
	return uint32(ret)
}

// EngineVersion 获取引擎版本
func (b *Bridge) EngineVersion() (string, error) {
	var ptr uintptr
	var length uintptr
	ret, _, _ := b.engineVersion.Call(uintptr(unsafe.Pointer(&ptr)), uintptr(unsafe.Pointer(&length)))
	if ret != 0 {
		return "", b.lastErr(ret)
	}
	return ptrToString(ptr, int(length)), nil
}

// Capabilities 获取能力信息
func (b *Bridge) Capabilities() (string, error) {
	var ptr uintptr
	var length uintptr
	ret, _, _ := b.capabilities.Call(uintptr(unsafe.Pointer(&ptr)), uintptr(unsafe.Pointer(&length)))
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
	ret, _, _ := b.planCompile.Call(
		uintptr(unsafe.Pointer(&planBytes[0])),
		uintptr(len(planBytes)),
		uintptr(unsafe.Pointer(&handle)),
	)
	runtime.KeepAlive(planBytes)

	if ret != 0 {
		return 0, b.lastErr(ret)
	}
	return handle, nil
}

// FreePlan 释放计划
func (b *Bridge) FreePlan(handle uint64) {
	b.planFree.Call(uintptr(handle))
}

// ExecuteArrow 执行计划并通过 Arrow C Data Interface 返回结果（零拷贝）。
// 输入的 schema/array 所有权会转移给引擎，调用方不要再释放它们。
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

	ret, _, _ := b.planExecuteArrow.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(inputSchema)),
		uintptr(unsafe.Pointer(inputArray)),
		uintptr(unsafe.Pointer(outSchema)),
		uintptr(unsafe.Pointer(outArray)),
	)
	if ret != 0 {
		return nil, nil, b.lastErr(ret)
	}
	return outSchema, outArray, nil
}

func (b *Bridge) lastErr(ret uintptr) error {
	var ptr uintptr
	var length uintptr
	b.lastError.Call(uintptr(unsafe.Pointer(&ptr)), uintptr(unsafe.Pointer(&length)))
	return ErrorCode(int32(ret)).Err(ptrToString(ptr, int(length)))
}

func ptrToString(ptr uintptr, length int) string {
	if ptr == 0 || length == 0 {
		return ""
	}
	bytes := make([]byte, length)
	for i := 0; i < length; i++ {
		bytes[i] = *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
	}
	return string(bytes)
}
