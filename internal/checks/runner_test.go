package checks

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envcheck/internal/config"
	"envcheck/internal/gpu"
	"envcheck/internal/logging"
)

func runAll(t *testing.T, env *fakeEnv, smi *fakeSMI) (Summary, string) {
	t.Helper()
	var out bytes.Buffer
	deps := Dependencies{Interpreter: env, SMI: smi}
	summary := NewRunner(EnvironmentChecks(deps, config.DefaultConfig()), &out, nil).Run(context.Background())
	return summary, out.String()
}

func TestRunner_AllPresent(t *testing.T) {
	summary, out := runAll(t, healthyEnv(), healthySMI())

	assert.Equal(t, 8, summary.Passed)
	assert.Equal(t, 8, summary.Total)
	assert.Equal(t, TierReady, summary.Tier)
	assert.Equal(t, 0, summary.ExitCode())
	assert.Contains(t, out, "Passed: 8/8 checks")
	assert.Contains(t, out, "✓ Environment is fully configured and ready to use!")
	assert.Contains(t, out, "Next steps:")
}

func TestRunner_TwoAbsent(t *testing.T) {
	summary, out := runAll(t, healthyEnv().without("timm", "positional_encodings"), healthySMI())

	assert.Equal(t, 6, summary.Passed)
	assert.Equal(t, TierMostly, summary.Tier)
	assert.Equal(t, 1, summary.ExitCode())
	assert.Contains(t, out, "Passed: 6/8 checks")
	assert.Contains(t, out, "⚠ Environment is mostly configured but has some issues.")
}

func TestRunner_ThreeAbsent(t *testing.T) {
	smi := healthySMI()
	smi.err = gpu.ErrSMINotFound
	summary, out := runAll(t, healthyEnv().without("timm", "lavis"), smi)

	assert.Equal(t, 5, summary.Passed)
	assert.Equal(t, TierIncomplete, summary.Tier)
	assert.Equal(t, 1, summary.ExitCode())
	assert.Contains(t, out, "✗ Environment setup is incomplete.")
}

func TestRunner_NoShortCircuit(t *testing.T) {
	env := healthyEnv().without("torch", "transformers", "timm", "spacy", "positional_encodings", "lavis")
	env.versionErr = assert.AnError
	smi := healthySMI()
	smi.err = gpu.ErrSMIFailed

	summary, out := runAll(t, env, smi)

	assert.Equal(t, 0, summary.Passed)
	require.Len(t, summary.Results, 8)
	assert.Equal(t, 1, smi.calls, "nvidia-smi must run even when every earlier check failed")
	for i, r := range summary.Results {
		assert.Equal(t, i+1, r.Index)
		assert.Contains(t, out, "Checking "+r.Name+"...")
	}
}

func TestRunner_CPUOnlyTorch(t *testing.T) {
	env := healthyEnv()
	env.torch.CUDAAvailable = false

	summary, out := runAll(t, env, healthySMI())

	assert.Equal(t, 7, summary.Passed)
	assert.Equal(t, TierMostly, summary.Tier)
	assert.False(t, summary.Results[1].Passed)
	assert.Contains(t, out, "  ⚠ CUDA available: No")
	assert.Contains(t, out, "     GPU acceleration will not be available!")
}

func TestRunner_OutputLayout(t *testing.T) {
	_, out := runAll(t, healthyEnv(), healthySMI())
	rule := strings.Repeat("=", 70)

	assert.True(t, strings.HasPrefix(out, "\n"+rule+"\n  3D-LLM Environment Validation\n"+rule+"\n"), out)
	assert.Contains(t, out, "\nValidating environment setup for 3D-LLM project...\n")
	assert.Contains(t, out, "\n[1/8] Checking Python version...\n  ✓ Python 3.8.18\n")
	assert.Contains(t, out, "\n[8/8] Checking GPU via nvidia-smi...\n")
	assert.Contains(t, out, rule+"\n  Validation Summary\n"+rule)

	steps := []string{"[1/8]", "[2/8]", "[3/8]", "[4/8]", "[5/8]", "[6/8]", "[7/8]", "[8/8]", "Validation Summary"}
	last := -1
	for _, s := range steps {
		idx := strings.Index(out, s)
		require.Greater(t, idx, last, "%s out of order", s)
		last = idx
	}
}

func TestRunner_LogsCompletion(t *testing.T) {
	var out, logs bytes.Buffer
	logger := logging.NewWriterLogger(logging.LevelInfo, logging.FormatText, &logs)
	deps := Dependencies{Interpreter: healthyEnv(), SMI: healthySMI(), Logger: logger}

	NewRunner(EnvironmentChecks(deps, config.DefaultConfig()), &out, logger).Run(context.Background())

	assert.Contains(t, logs.String(), "validation.complete")
	assert.Contains(t, logs.String(), "passed=8")
	assert.Contains(t, logs.String(), "tier=ready")
	assert.NotContains(t, out.String(), "validation.complete")
}

func TestRunner_WithPolicy(t *testing.T) {
	var out bytes.Buffer
	deps := Dependencies{Interpreter: healthyEnv().without("timm"), SMI: healthySMI()}

	summary := NewRunner(EnvironmentChecks(deps, config.DefaultConfig()), &out, nil).
		WithPolicy(Policy{MostlyThreshold: 8}).
		Run(context.Background())

	assert.Equal(t, 7, summary.Passed)
	assert.Equal(t, TierIncomplete, summary.Tier)
}

func TestRunCheck_RecoversPanic(t *testing.T) {
	boom := CheckFunc{Label: "boom", Fn: func(context.Context) Result {
		panic("probe exploded")
	}}

	var res Result
	require.NotPanics(t, func() {
		res = RunCheck(context.Background(), 3, boom, nil)
	})

	assert.Equal(t, 3, res.Index)
	assert.Equal(t, "boom", res.Name)
	assert.False(t, res.Passed)
	assert.Equal(t, StateMissing, res.State)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "boom check crashed: probe exploded", res.Lines[0].Text)
}

func TestRunCheck_FillsName(t *testing.T) {
	anon := CheckFunc{Label: "anon", Fn: func(context.Context) Result {
		return Result{State: StateGood, Passed: true}
	}}

	res := RunCheck(context.Background(), 1, anon, nil)

	assert.Equal(t, "anon", res.Name)
	assert.True(t, res.Passed)
}
