package cmdlog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"curator/internal/logging"
)

func TestRunLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	if err := Run("score", func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := Run("import", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("error not passed through: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "score_ok") || !strings.Contains(out, "import_error") {
		t.Fatalf("unexpected log output: %s", out)
	}
}
