package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/elex-datasource/internal/datasource"
	"github.com/pfrederiksen/elex-datasource/internal/storage"
)

const (
	testElections = `[
  {"slug": "wv-2004-05-11-primary", "start_date": "2004-05-11", "race_type": "primary", "special": false, "direct_links": []},
  {"slug": "wv-2010-11-02-general", "start_date": "2010-11-02", "race_type": "general", "special": false, "direct_links": ["http://apps.sos.wv.gov/elections/results/readfile.aspx?path=MjAxMA=="]}
]`
	testURLPaths = `date,path,url,office,party,district,special
2004-05-11,GovPrimary.pdf,,governor,,,false
2004-05-11,HouseDel12.pdf,,state_house,,12,false
2006-05-09,Other.pdf,,us_house,,1,false
`
	archive = "http://www.sos.wv.gov/elections/history/electionreturns/Documents/2004/"
	mirror  = "https://raw.githubusercontent.com/openelections/openelections-data-wv/master/"
)

// newTestDataDir writes a wv reference data set and returns its root
func newTestDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "wv")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		storage.ElectionsFile: testElections,
		storage.URLPathsFile:  testURLPaths,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(stateDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// runCmd executes the root command with a missing config file so defaults apply
func runCmd(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	base := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}
	if dataDir != "" {
		base = append(base, "--data-dir", dataDir)
	}
	cmd.SetArgs(append(args, base...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestMappingsCommand_JSON(t *testing.T) {
	dir := newTestDataDir(t)

	out, err := runCmd(t, dir, "mappings", "--state", "wv", "--year", "2004", "--format", "json")
	if err != nil {
		t.Fatalf("mappings error: %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if result.State != "wv" || result.Year != 2004 {
		t.Errorf("result state/year = %q/%d, want wv/2004", result.State, result.Year)
	}
	if result.Count != 2 || len(result.Mappings) != 2 {
		t.Fatalf("result count = %d (%d mappings), want 2", result.Count, len(result.Mappings))
	}

	got := result.Mappings[1]
	if got.GeneratedFilename != "20040511__wv__primary__state_house__12.csv" {
		t.Errorf("GeneratedFilename = %q", got.GeneratedFilename)
	}
	if got.RawURL != archive+"HouseDel12.pdf" {
		t.Errorf("RawURL = %q", got.RawURL)
	}
	if got.PreProcessedURL != mirror+"20040511__wv__primary__state_house__12.csv" {
		t.Errorf("PreProcessedURL = %q", got.PreProcessedURL)
	}
	if got.OCDID != "ocd-division/country:us/state:wv" || got.Election != "wv-2004-05-11-primary" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestMappingsCommand_Save(t *testing.T) {
	dir := newTestDataDir(t)

	if _, err := runCmd(t, dir, "mappings", "--state", "wv", "--save"); err != nil {
		t.Fatalf("mappings --save error: %v", err)
	}

	store, _ := storage.New(dir)
	snapshot, err := store.LoadMappings("wv")
	if err != nil {
		t.Fatalf("LoadMappings() error: %v", err)
	}
	// two office files for 2004 plus one statewide file for 2010
	if len(snapshot.Mappings) != 3 {
		t.Errorf("saved %d mappings, want 3", len(snapshot.Mappings))
	}
	if snapshot.State != "wv" || snapshot.Year != 0 {
		t.Errorf("snapshot state/year = %q/%d", snapshot.State, snapshot.Year)
	}
}

func TestTargetURLsCommand(t *testing.T) {
	dir := newTestDataDir(t)

	out, err := runCmd(t, dir, "target-urls", "--state", "WV")
	if err != nil {
		t.Fatalf("target-urls error: %v", err)
	}

	want := []string{
		archive + "GovPrimary.pdf",
		archive + "HouseDel12.pdf",
		"http://apps.sos.wv.gov/elections/results/readfile.aspx?path=MjAxMA==",
	}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d urls, want %d:\n%s", len(got), len(want), out)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilenameURLPairsCommand(t *testing.T) {
	dir := newTestDataDir(t)

	out, err := runCmd(t, dir, "filename-url-pairs", "--state", "wv", "--sort", "filename")
	if err != nil {
		t.Fatalf("filename-url-pairs error: %v", err)
	}

	want := []string{
		"20040511__wv__primary__governor.csv\t" + mirror + "20040511__wv__primary__governor.csv",
		"20040511__wv__primary__state_house__12.csv\t" + mirror + "20040511__wv__primary__state_house__12.csv",
		"20101102__wv__general.csv\thttp://apps.sos.wv.gov/elections/results/readfile.aspx?path=MjAxMA==",
	}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d:\n%s", len(got), len(want), out)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUnprocessedCommand(t *testing.T) {
	dir := newTestDataDir(t)

	out, err := runCmd(t, dir, "unprocessed", "--state", "wv", "--format", "json")
	if err != nil {
		t.Fatalf("unprocessed error: %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(result.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(result.Pairs))
	}
	if result.Pairs[0].Filename != "20040511__wv__primary__governor.pdf" || result.Pairs[0].URL != archive+"GovPrimary.pdf" {
		t.Errorf("pair = %+v", result.Pairs[0])
	}
}

func TestMappingsForURLCommand(t *testing.T) {
	dir := newTestDataDir(t)

	out, err := runCmd(t, dir, "mappings-for-url", archive+"GovPrimary.pdf", "--state", "wv", "--format", "json")
	if err != nil {
		t.Fatalf("mappings-for-url error: %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(result.Mappings) != 1 || result.Mappings[0].GeneratedFilename != "20040511__wv__primary__governor.csv" {
		t.Errorf("mappings = %+v", result.Mappings)
	}
}

func TestStatesCommand(t *testing.T) {
	out, err := runCmd(t, "", "states")
	if err != nil {
		t.Fatalf("states error: %v", err)
	}
	if out != "nc\nsd\nwv\n" {
		t.Errorf("states output = %q", out)
	}
}

func TestCommandValidation(t *testing.T) {
	dir := newTestDataDir(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing state", []string{"mappings"}, "--state is required"},
		{"negative year", []string{"mappings", "--state", "wv", "--year", "-1"}, "invalid year"},
		{"bad format", []string{"mappings", "--state", "wv", "--format", "xml"}, "invalid format"},
		{"bad sort", []string{"mappings", "--state", "wv", "--sort", "size"}, "invalid sort"},
		{"missing url", []string{"mappings-for-url", "--state", "wv"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, dir, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestUnknownState(t *testing.T) {
	_, err := runCmd(t, newTestDataDir(t), "mappings", "--state", "zz")
	if !errors.Is(err, datasource.ErrUnknownState) {
		t.Errorf("error = %v, want ErrUnknownState", err)
	}
}

func TestMissingElectionsFile(t *testing.T) {
	_, err := runCmd(t, t.TempDir(), "mappings", "--state", "wv")
	if err == nil || !strings.Contains(err.Error(), "reading elections") {
		t.Errorf("error = %v, want elections read failure", err)
	}
}

func TestMappingsCommand_NewOnly(t *testing.T) {
	dir := newTestDataDir(t)

	out, err := runCmd(t, dir, "mappings", "--state", "wv", "--new-only")
	if err != nil {
		t.Fatalf("mappings --new-only error: %v", err)
	}
	if n := len(strings.Split(strings.TrimSpace(out), "\n")); n != 3 {
		t.Errorf("without a snapshot got %d mappings, want 3", n)
	}

	if _, err := runCmd(t, dir, "mappings", "--state", "wv", "--year", "2004", "--save"); err != nil {
		t.Fatalf("mappings --save error: %v", err)
	}

	out, err = runCmd(t, dir, "mappings", "--state", "wv", "--new-only")
	if err != nil {
		t.Fatalf("mappings --new-only error: %v", err)
	}
	want := "20101102__wv__general.csv\thttp://apps.sos.wv.gov/elections/results/readfile.aspx?path=MjAxMA==\n"
	if out != want {
		t.Errorf("new-only output = %q, want %q", out, want)
	}
}

func TestMappingsCommand_Filter(t *testing.T) {
	dir := newTestDataDir(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"dates", []string{"--dates", "2008-2012"}, []string{"20101102__wv__general.csv"}},
		{"election", []string{"--election", "primary"}, []string{"20040511__wv__primary__governor.csv", "20040511__wv__primary__state_house__12.csv"}},
		{"pre-processed only", []string{"--pre-processed-only", "--sort", "filename"}, []string{"20040511__wv__primary__governor.csv", "20040511__wv__primary__state_house__12.csv"}},
		{"name", []string{"--name", "west"}, []string{"20040511__wv__primary__governor.csv", "20040511__wv__primary__state_house__12.csv", "20101102__wv__general.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, dir, append([]string{"mappings", "--state", "wv"}, tt.args...)...)
			if err != nil {
				t.Fatalf("mappings error: %v", err)
			}
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d mappings, want %d:\n%s", len(lines), len(tt.want), out)
			}
			for i, line := range lines {
				if filename, _, _ := strings.Cut(line, "\t"); filename != tt.want[i] {
					t.Errorf("mapping[%d] = %q, want %q", i, filename, tt.want[i])
				}
			}
		})
	}

	if _, err := runCmd(t, dir, "mappings", "--state", "wv", "--dates", "March 1-15"); err == nil {
		t.Error("expected error for invalid dates")
	}
}

func TestMappingsCommand_FilteredSaveKeepsFullSnapshot(t *testing.T) {
	dir := newTestDataDir(t)

	if _, err := runCmd(t, dir, "mappings", "--state", "wv", "--save"); err != nil {
		t.Fatalf("mappings --save error: %v", err)
	}
	out, err := runCmd(t, dir, "mappings", "--state", "wv", "--dates", "2010", "--save")
	if err != nil {
		t.Fatalf("filtered mappings --save error: %v", err)
	}
	if out != "20101102__wv__general.csv\thttp://apps.sos.wv.gov/elections/results/readfile.aspx?path=MjAxMA==\n" {
		t.Errorf("filtered output = %q", out)
	}

	store, _ := storage.New(dir)
	snapshot, err := store.LoadMappings("wv")
	if err != nil {
		t.Fatalf("LoadMappings() error: %v", err)
	}
	if len(snapshot.Mappings) != 3 {
		t.Errorf("snapshot holds %d mappings, want all 3", len(snapshot.Mappings))
	}

	out, err = runCmd(t, dir, "mappings", "--state", "wv", "--new-only")
	if err != nil {
		t.Fatalf("mappings --new-only error: %v", err)
	}
	if out != "" {
		t.Errorf("nothing changed upstream, new-only output = %q", out)
	}
}

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  []string
	}{
		{"success", []string{"states"}, ExitSuccess, nil},
		{"failure", []string{"mappings"}, ExitError, []string{`"level":"ERROR"`, `"message":"Command failed"`, "Error: --state is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			var stdout, stderr bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)

			if code := execute(cmd); code != tt.wantCode {
				t.Errorf("execute() = %d, want %d", code, tt.wantCode)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr.String())
				}
			}
			if tt.wantErr == nil && stderr.Len() != 0 {
				t.Errorf("unexpected stderr: %s", stderr.String())
			}
		})
	}
}
