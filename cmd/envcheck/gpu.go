package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"envcheck/internal/gpu"
)

func newGPUCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gpu",
		Short: "Report GPUs seen by NVML and nvidia-smi",
		Long: `Print the NVML detection report (driver, CUDA driver version, devices)
followed by the nvidia-smi device rows. Exits 1 when NVML is unavailable.

NVML support requires building with -tags cuda.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGPU(cmd, opts)
		},
	}
}

func runGPU(cmd *cobra.Command, opts *options) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	out := cmd.OutOrStdout()
	report := gpu.NewDetector(s.logger).DetectGPUs()

	fmt.Fprintln(out, "=== GPU Detection Report ===")
	if !report.NVMLOk {
		fmt.Fprintln(out, "✗ NVML Status: FAILED")
		fmt.Fprintf(out, "   Error: %s\n", report.ErrorMessage)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Hint: Install NVIDIA drivers to enable GPU support")
	} else {
		fmt.Fprintln(out, "✓ NVML Status: OK")
		fmt.Fprintf(out, "  Driver Version: %s\n", report.DriverVersion)
		fmt.Fprintf(out, "  CUDA Version: %s\n", report.CUDAVersionString())
		fmt.Fprintf(out, "  GPU Count: %d\n", len(report.GPUs))
		for _, g := range report.GPUs {
			fmt.Fprintf(out, "\n  GPU %d:\n", g.Index)
			fmt.Fprintf(out, "    Name: %s\n", g.Name)
			fmt.Fprintf(out, "    UUID: %s\n", g.UUID)
			fmt.Fprintf(out, "    Memory: %d MB\n", g.MemoryMB)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== nvidia-smi ===")
	result, err := gpu.NewSMIProbe(s.cfg.GPU.SMIPath, s.cfg.SMITimeout(), s.logger).Query(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
	} else {
		for _, d := range result.Devices {
			fmt.Fprintf(out, "✓ %s\n", d)
		}
	}

	if !report.NVMLOk {
		return &exitError{code: 1}
	}
	return nil
}
