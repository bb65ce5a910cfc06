// SPDX-License-Identifier: MPL-2.0

package scripthost

import (
	"context"
	"io"
	"strings"
	"testing"

	"packmule/pkg/pakref"
	"packmule/pkg/pakver"

	"github.com/charmbracelet/log"
)

func newTestLogger(w io.Writer) *log.Logger {
	return log.New(w)
}

func testPkg() pakref.FullRef {
	return pakref.FullRef{
		Name:       "toolkit",
		Version:    pakver.MustParse("1.2.3"),
		Repository: "https://packs.example.com/main",
	}
}

func TestRunnerRunCapture(t *testing.T) {
	r := NewRunner(&SilentHost{})
	result := r.RunCapture(context.Background(), testPkg(), `echo "hello from $PKG_NAME"`)

	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", result.ExitCode)
	}
	if got := strings.TrimSpace(result.Output); got != "hello from toolkit" {
		t.Errorf("output = %q", got)
	}
}

func TestRunnerInjectsPackageEnv(t *testing.T) {
	r := NewRunner(&SilentHost{})
	result := r.RunCapture(context.Background(), testPkg(), `echo "$PKG_NAME $PKG_VERSION $PKG_REPOSITORY"`)

	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d: %v", result.ExitCode, result.Error)
	}
	want := "toolkit 1.2.3 https://packs.example.com/main"
	if got := strings.TrimSpace(result.Output); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunnerExitCode(t *testing.T) {
	r := NewRunner(&SilentHost{})
	result := r.RunCapture(context.Background(), testPkg(), "exit 3")

	if result.Error != nil {
		t.Fatalf("nonzero exit must not be reported as an error: %v", result.Error)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
}

func TestRunnerStderr(t *testing.T) {
	r := NewRunner(&SilentHost{})
	result := r.RunCapture(context.Background(), testPkg(), `echo oops >&2; exit 1`)

	if result.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", result.ExitCode)
	}
	if got := strings.TrimSpace(result.ErrOutput); got != "oops" {
		t.Errorf("stderr = %q", got)
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(&SilentHost{})
	result := r.RunCapture(ctx, testPkg(), "echo never")

	if result.ExitCode == 0 && result.Error == nil {
		t.Errorf("canceled context should not report success")
	}
}

func TestRunnerValidate(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{"valid", `echo ok`, false},
		{"empty", "   ", true},
		{"syntax error", `if then fi`, true},
	}

	r := NewRunner(&SilentHost{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(tt.script)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.script, err, tt.wantErr)
			}
		})
	}
}

func TestConsoleHostConfirm(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"yes", "y\n", true},
		{"yes word", "Yes\n", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"garbage", "definitely\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			h := NewConsoleHost(newTestLogger(&out), strings.NewReader(tt.answer), &out)
			got, err := h.Confirm("proceed?")
			if err != nil {
				t.Fatalf("Confirm: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestConsoleHostAssumeYes(t *testing.T) {
	var out strings.Builder
	h := NewConsoleHost(newTestLogger(&out), strings.NewReader(""), &out)
	h.AssumeYes = true

	got, err := h.Confirm("proceed?")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !got {
		t.Errorf("AssumeYes host must answer yes")
	}
	if out.Len() != 0 {
		t.Errorf("AssumeYes host must not prompt, wrote %q", out.String())
	}
}
