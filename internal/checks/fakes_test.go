package checks

import (
	"context"
	"fmt"

	"envcheck/internal/gpu"
	"envcheck/internal/python"
)

// fakeEnv is an in-memory Python environment.
type fakeEnv struct {
	version    python.Version
	versionErr error
	modules    map[string]string // module -> __version__ ("" for none)
	missingSub map[string]bool   // "module.name" entries that fail ImportFrom
	torch      python.TorchInfo
	calls      []string
}

func healthyEnv() *fakeEnv {
	return &fakeEnv{
		version: python.Version{Major: 3, Minor: 8, Micro: 18},
		modules: map[string]string{
			"torch":                "2.0.1+cu118",
			"transformers":         "4.33.2",
			"timm":                 "0.9.7",
			"spacy":                "3.5.4",
			"positional_encodings": "",
			"lavis":                "",
		},
		missingSub: map[string]bool{},
		torch: python.TorchInfo{
			Version:       "2.0.1+cu118",
			CUDAAvailable: true,
			CUDAVersion:   "11.8",
			DeviceName:    "NVIDIA A100-SXM4-40GB",
			TotalMemory:   42505273344,
		},
	}
}

func (f *fakeEnv) without(modules ...string) *fakeEnv {
	for _, m := range modules {
		delete(f.modules, m)
	}
	return f
}

func (f *fakeEnv) RuntimeVersion(context.Context) (python.Version, error) {
	f.calls = append(f.calls, "runtime")
	return f.version, f.versionErr
}

func (f *fakeEnv) Import(_ context.Context, module string) (python.ModuleInfo, error) {
	f.calls = append(f.calls, "import:"+module)
	v, ok := f.modules[module]
	if !ok {
		return python.ModuleInfo{}, &python.ImportError{Module: module, Reason: fmt.Sprintf("No module named '%s'", module)}
	}
	return python.ModuleInfo{Name: module, Version: v}, nil
}

func (f *fakeEnv) ImportFrom(_ context.Context, module, name string) error {
	f.calls = append(f.calls, "from:"+module+"."+name)
	if f.missingSub[module+"."+name] {
		return &python.ImportError{Module: module, Reason: fmt.Sprintf("cannot import name '%s' from '%s'", name, module)}
	}
	return nil
}

func (f *fakeEnv) Torch(context.Context) (python.TorchInfo, error) {
	f.calls = append(f.calls, "torch")
	if _, ok := f.modules["torch"]; !ok {
		return python.TorchInfo{}, &python.ImportError{Module: "torch", Reason: "No module named 'torch'"}
	}
	return f.torch, nil
}

type fakeSMI struct {
	result gpu.SMIResult
	err    error
	calls  int
}

func healthySMI() *fakeSMI {
	return &fakeSMI{result: gpu.SMIResult{
		Devices: []gpu.SMIDevice{{Name: "NVIDIA A100-SXM4-40GB", DriverVersion: "535.104.05", MemoryTotal: "40960 MiB"}},
		Lines:   []string{"NVIDIA A100-SXM4-40GB, 535.104.05, 40960 MiB"},
	}}
}

func (f *fakeSMI) Query(context.Context) (gpu.SMIResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeNVML struct {
	report gpu.GPUReport
}

func (f fakeNVML) DetectGPUs() gpu.GPUReport {
	return f.report
}
