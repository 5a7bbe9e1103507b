package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baselineOutput = `goos: linux
goarch: amd64
pkg: github.com/nuworks/authcore
BenchmarkVerifyAccess-8     	  500000	      2000 ns/op	    1200 B/op	      20 allocs/op
BenchmarkVerifyAccess-8     	  500000	      2200 ns/op	    1200 B/op	      20 allocs/op
BenchmarkVerifyRefresh-8    	  100000	     30000 ns/op	    4000 B/op	      60 allocs/op
BenchmarkAuthenticate-8     	     100	  9000000 ns/op	 8000000 B/op	     300 allocs/op
PASS
`

func TestParseBenchmarks(t *testing.T) {
	samples, err := parseBenchmarks(strings.NewReader(baselineOutput))
	require.NoError(t, err)

	assert.Equal(t, []float64{2000, 2200}, samples["BenchmarkVerifyAccess"]["ns/op"])
	assert.Equal(t, []float64{60}, samples["BenchmarkVerifyRefresh"]["allocs/op"])
	assert.NotContains(t, samples, "goos:")
}

func TestNormalizeBenchmarkName(t *testing.T) {
	assert.Equal(t, "BenchmarkVerifyAccess", normalizeBenchmarkName("BenchmarkVerifyAccess-16"))
	assert.Equal(t, "BenchmarkVerifyAccess", normalizeBenchmarkName("BenchmarkVerifyAccess"))
	assert.Equal(t, "BenchmarkVerify-Access", normalizeBenchmarkName("BenchmarkVerify-Access"))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}))
	assert.Zero(t, median(nil))
}

func TestCompare(t *testing.T) {
	baseline, err := parseBenchmarks(strings.NewReader(baselineOutput))
	require.NoError(t, err)

	rows, failures := compare(baseline, baseline, defaultThreshold)
	assert.Empty(t, failures)
	assert.Len(t, rows, 5)
	assert.Equal(t, "BenchmarkAuthenticate", rows[0].benchmark)

	slower := strings.ReplaceAll(baselineOutput, "30000 ns/op", "60000 ns/op")
	candidate, err := parseBenchmarks(strings.NewReader(slower))
	require.NoError(t, err)

	_, failures = compare(baseline, candidate, defaultThreshold)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "BenchmarkVerifyRefresh ns/op regressed")
}

func TestCompareMissingBenchmark(t *testing.T) {
	baseline, err := parseBenchmarks(strings.NewReader(baselineOutput))
	require.NoError(t, err)
	delete(baseline, "BenchmarkAuthenticate")

	_, failures := compare(baseline, baseline, defaultThreshold)
	assert.Contains(t, failures, "missing samples for BenchmarkAuthenticate ns/op")
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	require.NoError(t, os.WriteFile(base, []byte(baselineOutput), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--baseline", base, "--candidate", base})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "BenchmarkVerifyAccess ns/op 2100.000 2100.000 +0.00%")

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--baseline", base})
	assert.Error(t, cmd.Execute())
}
