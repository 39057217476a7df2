package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStatus(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"status"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestStatusCommand(t *testing.T) {
	cases := []struct {
		name string
		now  string
		want string
	}{
		{"before opening", "2024-04-30", "Em Breve"},
		{"opening day", "2024-05-01", "Abertas"},
		{"last day is inclusive", "2024-05-31T23:59:00", "Abertas"},
		{"after closing", "2024-06-01", "Encerradas"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := runStatus(t, "--abertura", "2024-05-01", "--encerramento", "2024-05-31", "--agora", tc.now, "--tz", "UTC")
			assert.Contains(t, out, tc.want)
		})
	}
}

func TestStatusCommand_MissingDateIsClosed(t *testing.T) {
	out := runStatus(t, "--abertura", "2024-05-01", "--encerramento", "", "--agora", "2024-05-10", "--tz", "UTC")
	assert.Contains(t, out, "Inscrições Encerradas")
}

func TestStatusCommand_RejectsBadDate(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"status", "--abertura", "01/05/2024", "--encerramento", "2024-05-31", "--agora", "2024-05-10"})
	assert.Error(t, rootCmd.Execute())
}
