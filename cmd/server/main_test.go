package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Jornada/internal/models"
	"github.com/soaringjerry/Jornada/internal/services"
)

// cliEnv points every command at a fresh sqlite file so state survives
// between invocations.
func cliEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JORNADA_CONFIG", "")
	t.Setenv("JORNADA_STORE_DRIVER", "sqlite")
	t.Setenv("JORNADA_SQLITE_PATH", filepath.Join(dir, "data", "jornada.db"))
	t.Setenv("JORNADA_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func browserDump(t *testing.T) string {
	t.Helper()
	reports := []map[string]any{
		{
			"id":            "r-1",
			"playerName":    "Ana",
			"date":          "2024-05-01T12:00:00Z",
			"profileCounts": map[string]int{"interventor": 5, "espectador": 1},
		},
		{"id": "r-2", "playerName": "Caio", "profileCounts": map[string]int{"agressor": 2}},
		42,
	}
	inner, err := json.Marshal(reports)
	if err != nil {
		t.Fatal(err)
	}
	dump, err := json.Marshal(map[string]string{services.ReportsKey: string(inner), "theme": "dark"})
	if err != nil {
		t.Fatal(err)
	}
	return string(dump)
}

func TestImportListExportDelete(t *testing.T) {
	dir := cliEnv(t)
	dumpPath := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(dumpPath, []byte(browserDump(t)), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "import", "--dry-run", dumpPath)
	if err != nil || !strings.Contains(out, "would import 2 reports, skip 1") {
		t.Fatalf("unexpected dry run: %q %v", out, err)
	}
	out, err = run(t, "", "reports", "list")
	if err != nil || strings.Contains(out, "Ana") {
		t.Fatalf("dry run must not write: %q %v", out, err)
	}

	out, err = run(t, "", "import", dumpPath)
	if err != nil || !strings.Contains(out, "imported 2 reports, skipped 1") {
		t.Fatalf("unexpected import: %q %v", out, err)
	}

	out, err = run(t, "", "reports", "list", "--lang", "en")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Ana") || !strings.Contains(out, "Caio") || !strings.Contains(out, "Positive Intervenor") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out, err = run(t, "", "reports", "show", "r-1")
	if err != nil {
		t.Fatal(err)
	}
	var shown models.Report
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("show should print json: %v", err)
	}
	if shown.Diagnosis.DominantTag != models.ProfileInterventor || shown.Date.Year() != 2024 {
		t.Fatalf("unexpected report %+v", shown)
	}

	out, err = run(t, "", "reports", "export", "r-1", "--format", "csv")
	if err != nil || !strings.HasPrefix(out, "\ufeff\"") {
		t.Fatalf("expected BOM-prefixed csv on stdout: %q %v", out, err)
	}
	if _, err := run(t, "", "reports", "export", "r-1", "--format", "html", "-o", "."); err != nil {
		t.Fatal(err)
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*.html")); len(matches) != 1 {
		t.Fatalf("expected one html file written, got %v", matches)
	}
	if _, err := run(t, "", "reports", "export"); err == nil {
		t.Fatalf("expected error without id or --all")
	}

	if _, err := run(t, "", "reports", "delete", "r-2"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "reports", "delete", "r-2"); err == nil {
		t.Fatalf("expected second delete to fail")
	}
	if _, err := run(t, "", "reports", "clear"); err == nil {
		t.Fatalf("clear without --yes must refuse")
	}
	if _, err := run(t, "", "reports", "clear", "--yes"); err != nil {
		t.Fatal(err)
	}
	out, _ = run(t, "", "reports", "export", "--all")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty export after clear, got %q", out)
	}
}

func TestImportFromStdin(t *testing.T) {
	cliEnv(t)
	out, err := run(t, `[{"playerName":"Bia","profileCounts":{"vitima":3}}]`, "import", "-")
	if err != nil || !strings.Contains(out, "imported 1 reports") {
		t.Fatalf("unexpected stdin import: %q %v", out, err)
	}
	if _, err := run(t, "{}", "import", "-"); err == nil {
		t.Fatalf("expected error for a dump without the reports key")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cliEnv(t)
	t.Setenv("JORNADA_STORE_DRIVER", "memory")
	t.Setenv("JORNADA_ADDR", "127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, &rootOptions{}) }()
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop after cancel")
	}
}
