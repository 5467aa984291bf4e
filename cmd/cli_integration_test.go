package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureOutput redirects stdout to a buffer while fn runs and returns the captured output.
func captureOutput(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	return <-outC
}

func TestVersionCommand_Output(t *testing.T) {
	// run `proposalviewer version` and capture stdout
	rootCmd.SetArgs([]string{"version"})
	out := captureOutput(func() {
		if _, err := rootCmd.ExecuteC(); err != nil {
			t.Fatalf("version command failed: %v", err)
		}
	})

	// default sha1ver is 'develop' unless set with -ldflags
	if out != "develop\n" {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestHelpOutput_RootAndSubcommands(t *testing.T) {
	for _, args := range [][]string{
		{"--help"},
		{"filter", "--help"},
		{"filter", "projects", "--help"},
		{"explain", "--help"},
		{"server", "--help"},
	} {
		rootCmd.SetArgs(args)
		out := captureOutput(func() {
			if _, err := rootCmd.ExecuteC(); err != nil {
				t.Fatalf("%v failed: %v", args, err)
			}
		})
		if len(out) == 0 {
			t.Fatalf("expected help output for %v, got empty", args)
		}
	}
}

func TestFilterCommand_EndToEnd(t *testing.T) {
	isolateHome(t)

	configFile, err := writeExample(t.TempDir(), "yaml")
	if err != nil {
		t.Fatalf("failed to write example: %v", err)
	}

	rootCmd.SetArgs([]string{"filter", "projects", "-c", configFile, "-q", "entity:hospital AND year:2024", "--color=false"})
	out := captureOutput(func() {
		if _, err := rootCmd.ExecuteC(); err != nil {
			t.Fatalf("filter command failed: %v", err)
		}
	})

	if !bytes.Contains([]byte(out), []byte("Hospital Tower")) || !bytes.Contains([]byte(out), []byte("1/3 projects")) {
		t.Fatalf("unexpected filter output: %q", out)
	}
}
