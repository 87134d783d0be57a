package gpu

import "fmt"

// GPUInfo represents a single GPU as seen by NVML
type GPUInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	UUID     string `json:"uuid"`
	MemoryMB uint64 `json:"memory_mb"`
}

// GPUReport is the outcome of an NVML detection pass
type GPUReport struct {
	DriverVersion string    `json:"driver_version"`
	CUDAVersion   int       `json:"cuda_version"`
	NVMLOk        bool      `json:"nvml_ok"`
	GPUs          []GPUInfo `json:"gpus"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// CUDAVersionString renders NVML's integer CUDA driver version (12020) as "12.2".
func (r GPUReport) CUDAVersionString() string {
	if r.CUDAVersion <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d", r.CUDAVersion/1000, (r.CUDAVersion%1000)/10)
}

// SMIDevice is one row of nvidia-smi's name,driver_version,memory.total query
type SMIDevice struct {
	Name          string
	DriverVersion string
	MemoryTotal   string // as printed, e.g. "24564 MiB"
}

// String renders the row the way nvidia-smi printed it.
func (d SMIDevice) String() string {
	return d.Name + ", " + d.DriverVersion + ", " + d.MemoryTotal
}
