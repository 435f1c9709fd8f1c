package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoNamesSortedAndComplete(t *testing.T) {
	names := demoNames()
	require.Len(t, names, len(demos))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestRunDemoOutputs(t *testing.T) {
	cases := map[string]string{
		"fibonacci": "55",
		"foreach":   "0=3;1=1;2=2;",
		"clone":     "5,7",
		"enum":      "B",
		"trycatch":  "e|f",
		"pipe":      "HI",
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			err := runDemo(name, &out)
			require.NoError(t, err)
			assert.Equal(t, want, out.String())
		})
	}
}

func TestRunDemoUnknownName(t *testing.T) {
	var out bytes.Buffer
	err := runDemo("does-not-exist", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such demo")
}

func TestDumpBytecodeProducesAListing(t *testing.T) {
	var out bytes.Buffer
	err := dumpBytecode("fibonacci", &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Contains(t, line, "op1=")
		assert.Contains(t, line, "result=")
	}
}

func TestDumpBytecodeUnknownName(t *testing.T) {
	var out bytes.Buffer
	err := dumpBytecode("does-not-exist", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such demo")
}
