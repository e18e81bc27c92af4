package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discdb/internal/disc"
	"discdb/internal/disc/fingerprint"
	"discdb/internal/identifier"
	"discdb/internal/services"
	"discdb/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	logPath    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DISCDB_USER", "")

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[database]
path = %q

[blob]
backend = "file"
dir = %q

[identifiers]
salt = "cli-test-salt"

[identity]
user_id = "alice"

[logging]
level = "warn"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "data", "discdb.db"),
		filepath.Join(base, "data", "blobs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logPath := filepath.Join(base, "feature.log")
	logText := testsupport.RipLog("Sample Feature",
		testsupport.LogTitle{Duration: "1:52:10", Chapters: 24, Segments: "1,2,3"},
		testsupport.LogTitle{Duration: "0:12:04", Chapters: 3, Segments: "40"},
	)
	if err := os.WriteFile(logPath, []byte(logText), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath, logPath: logPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestLogParseAndFingerprint(t *testing.T) {
	env := setupCLITestEnv(t)

	raw, err := os.ReadFile(env.logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	info, err := disc.ParseLog(string(raw))
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	want := fingerprint.Compute(info)

	// Offline commands work without any configuration file.
	out, _, err := runCLI(t, []string{"log", "parse", env.logPath}, "")
	if err != nil {
		t.Fatalf("log parse: %v", err)
	}
	requireContains(t, out, "Sample Feature")
	requireContains(t, out, "Fingerprint: "+want)
	requireContains(t, out, "1:52:10")

	out, _, err = runCLI(t, []string{"log", "fingerprint", env.logPath}, "")
	if err != nil {
		t.Fatalf("log fingerprint: %v", err)
	}
	if strings.TrimSpace(out) != want {
		t.Fatalf("fingerprint = %q, want %q", strings.TrimSpace(out), want)
	}

	out, _, err = runCLI(t, []string{"log", "parse", "--json", env.logPath}, "")
	if err != nil {
		t.Fatalf("log parse --json: %v", err)
	}
	var parsed discInfoOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(parsed.Titles) != 2 || parsed.Titles[0].Chapters != 24 || parsed.Format != string(disc.FormatBluRay) {
		t.Fatalf("unexpected parse output %+v", parsed)
	}
}

func TestLogParseRejectsGarbage(t *testing.T) {
	env := setupCLITestEnv(t)
	garbage := filepath.Join(env.baseDir, "notes.txt")
	if err := os.WriteFile(garbage, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, []string{"log", "parse", garbage}, "")
	if !errors.Is(err, services.ErrLogFormat) {
		t.Fatalf("expected log format error, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode(err))
	}
}

func TestIDEncodeDecode(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"id", "encode", "42"}, env.configPath)
	if err != nil {
		t.Fatalf("id encode: %v", err)
	}
	enc := strings.TrimSpace(out)
	if len(enc) < identifier.DefaultMinLength {
		t.Fatalf("encoded id %q shorter than minimum", enc)
	}

	out, _, err = runCLI(t, []string{"id", "decode", enc}, env.configPath)
	if err != nil {
		t.Fatalf("id decode: %v", err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Fatalf("decode = %q", out)
	}

	_, _, err = runCLI(t, []string{"id", "decode", "???"}, env.configPath)
	if !errors.Is(err, services.ErrCodec) {
		t.Fatalf("expected codec error, got %v", err)
	}
}

func createContribution(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	out, _, err := runCLI(t, []string{"contribution", "create", "--provider", "tmdb", "--external-id", "603", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var view contributionJSON
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode create output: %v", err)
	}
	if view.ID == "" || view.Status != "pending" || view.Owner != "alice" {
		t.Fatalf("unexpected create output %+v", view)
	}
	return view.ID
}

func TestContributionLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createContribution(t, env)

	steps := [][]string{
		{"contribution", "add-disc", id},
		{"contribution", "upload-log", id, "1", env.logPath},
		{"contribution", "edit", id,
			"--title", "The Sample Feature",
			"--release-date", "2008-11-18",
			"--asin", "B001E5WKQA",
			"--upc", "085391163923",
			"--region", "A",
			"--locale", "en-us"},
	}
	for _, args := range steps {
		if _, _, err := runCLI(t, args, env.configPath); err != nil {
			t.Fatalf("%s: %v", strings.Join(args[:2], " "), err)
		}
	}

	out, _, err := runCLI(t, []string{"contribution", "validate", id}, env.configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "front image is required")
	requireContains(t, out, "Not ready to submit")

	_, _, err = runCLI(t, []string{"contribution", "submit", id}, env.configPath)
	if !errors.Is(err, services.ErrStateTransition) {
		t.Fatalf("expected submit refused, got %v", err)
	}
	requireContains(t, describeError(err), "front image is required")

	image := filepath.Join(env.baseDir, "front.png")
	if err := os.WriteFile(image, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	out, _, err = runCLI(t, []string{"contribution", "upload-image", id, "front", image}, env.configPath)
	if err != nil {
		t.Fatalf("upload-image: %v", err)
	}
	requireContains(t, out, "Stored front image")

	out, _, err = runCLI(t, []string{"contribution", "submit", id}, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	requireContains(t, out, "ready_for_review")

	if _, _, err := runCLI(t, []string{"contribution", "decide", id, "approve"}, env.configPath); !errors.Is(err, services.ErrStateTransition) {
		t.Fatalf("owner approval should be refused, got %v", err)
	}
	out, _, err = runCLI(t, []string{"--as", "root", "--role", "administrator", "contribution", "decide", id, "approve"}, env.configPath)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	requireContains(t, out, "approved")

	out, _, err = runCLI(t, []string{"--role", "system", "contribution", "import", id}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "imported")

	out, _, err = runCLI(t, []string{"contribution", "show", "--json", id}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var view contributionJSON
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if view.Status != "imported" || len(view.Discs) != 1 || view.Discs[0].Name != "Sample Feature" || len(view.Discs[0].Items) != 2 {
		t.Fatalf("unexpected final view %+v", view)
	}
	if view.Release.Slug != "the-sample-feature" || view.Release.ReleaseDate != "2008-11-18" {
		t.Fatalf("unexpected release %+v", view.Release)
	}

	raw, _, err := runCLI(t, []string{"contribution", "raw-log", id, "1"}, env.configPath)
	if err != nil {
		t.Fatalf("raw-log: %v", err)
	}
	original, _ := os.ReadFile(env.logPath)
	if raw != string(original) {
		t.Fatal("raw-log output differs from uploaded log")
	}
}

func TestShowDistinguishesInvalidFromMissing(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"contribution", "show", "not!valid"}, env.configPath)
	if err == nil || !strings.Contains(describeError(err), "invalid reference") {
		t.Fatalf("expected invalid reference, got %v", err)
	}

	out, _, err := runCLI(t, []string{"id", "encode", "999"}, env.configPath)
	if err != nil {
		t.Fatalf("id encode: %v", err)
	}
	_, _, err = runCLI(t, []string{"contribution", "show", strings.TrimSpace(out)}, env.configPath)
	if err == nil || !strings.HasPrefix(describeError(err), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1 for a missing contribution, got %d", exitCode(err))
	}
}

func TestUploadLogConflictNeedsForce(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createContribution(t, env)
	if _, _, err := runCLI(t, []string{"contribution", "add-disc", id, "--format", "bluray"}, env.configPath); err != nil {
		t.Fatalf("add-disc: %v", err)
	}
	if _, _, err := runCLI(t, []string{"contribution", "upload-log", id, "1", env.logPath}, env.configPath); err != nil {
		t.Fatalf("upload-log: %v", err)
	}

	other := filepath.Join(env.baseDir, "other.log")
	text := testsupport.RipLog("Other", testsupport.LogTitle{Duration: "1:30:00", Chapters: 12, Segments: "1"})
	if err := os.WriteFile(other, []byte(text), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, []string{"contribution", "upload-log", id, "1", other}, env.configPath)
	if !errors.Is(err, services.ErrFingerprintConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	requireContains(t, describeError(err), "--force")

	out, _, err := runCLI(t, []string{"contribution", "upload-log", "--force", id, "1", other}, env.configPath)
	if err != nil {
		t.Fatalf("forced upload: %v", err)
	}
	requireContains(t, out, "replaced")
}

func TestValidateReportsAdvisoriesAndFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	id := createContribution(t, env)
	for _, args := range [][]string{
		{"contribution", "add-disc", id, "--format", "bluray"},
		{"contribution", "add-disc", id, "--format", "bluray"},
		{"contribution", "upload-log", id, "1", env.logPath},
		{"contribution", "upload-log", id, "2", env.logPath},
	} {
		if _, _, err := runCLI(t, args, env.configPath); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, _, err := runCLI(t, []string{"contribution", "validate", "--json", id}, env.configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var report validationJSON
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode validate output: %v\n%s", err, out)
	}
	if report.Eligible || len(report.Failures) == 0 {
		t.Fatalf("expected blocking failures, got %+v", report)
	}
	if len(report.Advisories) != 2 {
		t.Fatalf("expected both discs flagged as duplicates, got %v", report.Advisories)
	}
	for _, adv := range report.Advisories {
		if !strings.HasPrefix(adv, "duplicate-advisory: ") {
			t.Fatalf("unexpected advisory %q", adv)
		}
	}
}

func TestFlagHelpListsChoices(t *testing.T) {
	out, _, err := runCLI(t, []string{"contribution", "add-disc", "--help"}, "")
	if err != nil {
		t.Fatalf("add-disc --help: %v", err)
	}
	requireContains(t, out, "4K, Blu-ray or DVD")

	out, _, err = runCLI(t, []string{"contribution", "edit-item", "--help"}, "")
	if err != nil {
		t.Fatalf("edit-item --help: %v", err)
	}
	requireContains(t, out, "MainMovie, Extra, Episode, DeletedScene or Trailer")
}

func TestListFiltersByStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	first := createContribution(t, env)
	createContribution(t, env)

	out, _, err := runCLI(t, []string{"contribution", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, first)

	out, _, err = runCLI(t, []string{"contribution", "list", "--status", "approved", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list --status: %v", err)
	}
	var rows []summaryJSON
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no approved contributions, got %+v", rows)
	}

	if _, _, err := runCLI(t, []string{"contribution", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected unknown status error")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}
