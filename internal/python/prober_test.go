package python

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"envcheck/internal/cmdexec"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) (cmdexec.Output, error) {
	ret := m.Called(name, args)
	return ret.Get(0).(cmdexec.Output), ret.Error(1)
}

// probeArgs matches the argv of a probe running script with the given extra arguments.
func probeArgs(script string, extra ...string) interface{} {
	return mock.MatchedBy(func(args []string) bool {
		if len(args) != 2+len(extra) || args[0] != "-c" || args[1] != script {
			return false
		}
		for i, e := range extra {
			if args[2+i] != e {
				return false
			}
		}
		return true
	})
}

// answer renders a probe result the way the emit() helper prints it.
func answer(payload string) string {
	return "\n" + resultMarker + payload + "\n"
}

func newTestProber(r cmdexec.Runner) *Prober {
	return NewProberWithRunner("python3", time.Second, r, nil)
}

func TestProber_RuntimeVersion(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", probeArgs(runtimeScript)).
		Return(cmdexec.Output{Stdout: answer(`{"ok": true, "version_info": [3, 8, 18]}`)}, nil)

	v, err := newTestProber(r).RuntimeVersion(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Version{Major: 3, Minor: 8, Micro: 18}, v)
	assert.Equal(t, "3.8.18", v.String())
	r.AssertExpectations(t)
}

func TestProber_RuntimeVersion_InterpreterMissing(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", mock.Anything).
		Return(cmdexec.Output{}, fmt.Errorf("python3: %w", cmdexec.ErrNotFound))

	_, err := newTestProber(r).RuntimeVersion(context.Background())

	assert.ErrorIs(t, err, ErrInterpreterNotFound)
}

func TestProber_RuntimeVersion_Malformed(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", mock.Anything).
		Return(cmdexec.Output{Stdout: answer(`{"ok": true, "version_info": [3]}`)}, nil)

	_, err := newTestProber(r).RuntimeVersion(context.Background())

	assert.ErrorIs(t, err, ErrBadProbeOutput)
}

func TestProber_Import(t *testing.T) {
	tests := []struct {
		name        string
		stdout      string
		wantVersion string
		wantErr     error
		wantReason  string
	}{
		{
			name:        "with version",
			stdout:      answer(`{"ok": true, "version": "4.33.2"}`),
			wantVersion: "4.33.2",
		},
		{
			name:   "without version",
			stdout: answer(`{"ok": true, "version": null}`),
		},
		{
			name:        "noise before result",
			stdout:      "Loading plugins...\n" + answer(`{"ok": true, "version": "3.5.4"}`),
			wantVersion: "3.5.4",
		},
		{
			name:        "module printed without newline",
			stdout:      "loading noisy..." + answer(`{"ok": true, "version": "1.0"}`),
			wantVersion: "1.0",
		},
		{
			name:        "module printed after result",
			stdout:      answer(`{"ok": true, "version": "1.0"}`) + "bye from atexit",
			wantVersion: "1.0",
		},
		{
			name:    "json without marker",
			stdout:  `{"ok": true, "version": "1.0"}`,
			wantErr: ErrBadProbeOutput,
		},
		{
			name:       "import error",
			stdout:     answer(`{"ok": false, "error": "No module named 'transformers'"}`),
			wantErr:    ErrModuleNotFound,
			wantReason: "No module named 'transformers'",
		},
		{
			name:    "empty output",
			stdout:  "",
			wantErr: ErrBadProbeOutput,
		},
		{
			name:    "garbage output",
			stdout:  "Segmentation fault",
			wantErr: ErrBadProbeOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockRunner{}
			r.On("Run", "python3", probeArgs(importScript, "transformers")).
				Return(cmdexec.Output{Stdout: tt.stdout}, nil)

			info, err := newTestProber(r).Import(context.Background(), "transformers")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantReason != "" {
					assert.Equal(t, tt.wantReason, err.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "transformers", info.Name)
			assert.Equal(t, tt.wantVersion, info.Version)
		})
	}
}

func TestProber_Import_Timeout(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", mock.Anything).
		Return(cmdexec.Output{}, fmt.Errorf("python3: %w", cmdexec.ErrTimeout))

	_, err := newTestProber(r).Import(context.Background(), "lavis")

	assert.ErrorIs(t, err, cmdexec.ErrTimeout)
	assert.NotErrorIs(t, err, ErrModuleNotFound)
}

func TestProber_ImportFrom(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", probeArgs(importFromScript, "lavis.models", "load_model_and_preprocess")).
		Return(cmdexec.Output{Stdout: answer(`{"ok": false, "error": "cannot import name 'load_model_and_preprocess' from 'lavis.models'"}`)}, nil)

	err := newTestProber(r).ImportFrom(context.Background(), "lavis.models", "load_model_and_preprocess")

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "lavis.models", importErr.Module)
	assert.Contains(t, err.Error(), "cannot import name")
}

func TestProber_Torch(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", probeArgs(torchScript)).
		Return(cmdexec.Output{Stdout: answer(`{"ok": true, "version": "2.0.1+cu118", "cuda_available": true, "cuda_version": "11.8", "device_name": "NVIDIA A100-SXM4-40GB", "total_memory": 42505273344}`)}, nil)

	info, err := newTestProber(r).Torch(context.Background())

	require.NoError(t, err)
	assert.True(t, info.CUDAAvailable)
	assert.Equal(t, "2.0.1+cu118", info.Version)
	assert.Equal(t, "11.8", info.CUDAVersion)
	assert.Equal(t, "NVIDIA A100-SXM4-40GB", info.DeviceName)
	assert.InDelta(t, 42.5, info.MemoryGB(), 0.01)
}

func TestProber_Torch_CPUOnly(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", "python3", probeArgs(torchScript)).
		Return(cmdexec.Output{Stdout: answer(`{"ok": true, "version": "2.0.1+cpu", "cuda_available": false}`)}, nil)

	info, err := newTestProber(r).Torch(context.Background())

	require.NoError(t, err)
	assert.False(t, info.CUDAAvailable)
	assert.Empty(t, info.DeviceName)
}

func TestMajorMinor(t *testing.T) {
	v, err := MajorMinor("3.8")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 3, Minor: 8}, v)

	for _, bad := range []string{"3", "3.8.1", "three.eight", "3.x", ""} {
		_, err := MajorMinor(bad)
		assert.Error(t, err, "MajorMinor(%q)", bad)
	}
}

func TestVersion_SameMajorMinor(t *testing.T) {
	want := Version{Major: 3, Minor: 8}

	assert.True(t, Version{Major: 3, Minor: 8, Micro: 18}.SameMajorMinor(want))
	assert.False(t, Version{Major: 3, Minor: 9, Micro: 0}.SameMajorMinor(want))
	assert.False(t, Version{Major: 2, Minor: 8, Micro: 0}.SameMajorMinor(want))
}
