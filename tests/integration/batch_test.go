package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdforge/word-pdf-converter/config"
	"github.com/pdforge/word-pdf-converter/internal/batch"
	"github.com/pdforge/word-pdf-converter/internal/naming"
	"github.com/pdforge/word-pdf-converter/tests/testutil"
	"go.uber.org/zap"
)

// TestBatchEndToEnd runs a full batch against real directories: bracket
// stripping, seeding from pre-existing output, conflict renaming, and
// on-disk results.
func TestBatchEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	inputDir := t.TempDir()
	outputDir := t.TempDir()

	// A previous run already produced this file; the batch must not
	// overwrite it.
	if err := os.WriteFile(filepath.Join(outputDir, "Quarterly Report.pdf"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	sources := []string{
		"Quarterly Report [Draft].docx",
		"[Notes].docx",
		"Memo.docx",
	}
	rule := naming.Rule(config.NamingRuleStripBrackets)

	items := make([]batch.Item, 0, len(sources))
	for _, name := range sources {
		path := filepath.Join(inputDir, name)
		if err := os.WriteFile(path, []byte("fake word document"), 0644); err != nil {
			t.Fatal(err)
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		items = append(items, batch.Item{Source: path, Base: rule.Apply(stem)})
	}

	cfg := &config.Config{
		OutputDir:         outputDir,
		NamingRule:        config.NamingRuleStripBrackets,
		WorkerCount:       2,
		MaxPathLength:     4096,
		ConvertTimeoutSec: 10,
	}

	fake := &testutil.FakeEngine{WriteOutput: true}
	coordinator := batch.NewCoordinator(cfg, fake, zap.NewNop(), nil)

	b, err := coordinator.Start(context.Background(), items)
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	s := b.Wait()

	if s.Total != 3 || s.NotProcessed != 0 || s.Failed != 0 {
		t.Fatalf("summary = %+v, expected all 3 items converted", s)
	}
	if s.Renamed != 1 {
		t.Errorf("Renamed = %d, expected the seeded Quarterly Report collision", s.Renamed)
	}
	if s.Converted != 2 {
		t.Errorf("Converted = %d, expected 2", s.Converted)
	}

	for _, name := range []string{
		"Quarterly Report (1).pdf",
		"untitled.pdf",
		"Memo.pdf",
	} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}

	// The pre-existing file must be untouched.
	data, err := os.ReadFile(filepath.Join(outputDir, "Quarterly Report.pdf"))
	if err != nil || string(data) != "old" {
		t.Errorf("pre-existing output was overwritten (data %q, err %v)", data, err)
	}

	// Every source must have gone through the engine exactly once.
	pending := make(map[string]struct{}, len(items))
	for _, item := range items {
		pending[item.Source] = struct{}{}
	}
	for _, source := range fake.Converted() {
		if _, ok := pending[source]; !ok {
			t.Errorf("engine converted %s twice or out of nowhere", source)
			continue
		}
		delete(pending, source)
	}
	for source := range pending {
		t.Errorf("engine never converted %s", source)
	}
}

// TestBatchStopEndToEnd verifies cooperative stop against real output:
// released in-flight items land on disk, refused items leave no trace.
func TestBatchStopEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	inputDir := t.TempDir()
	outputDir := t.TempDir()

	const total = 5
	items := make([]batch.Item, 0, total)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		path := filepath.Join(inputDir, name+".docx")
		if err := os.WriteFile(path, []byte("doc"), 0644); err != nil {
			t.Fatal(err)
		}
		items = append(items, batch.Item{Source: path, Base: name})
	}

	cfg := &config.Config{
		OutputDir:         outputDir,
		NamingRule:        config.NamingRuleOriginal,
		WorkerCount:       1,
		MaxPathLength:     4096,
		ConvertTimeoutSec: 10,
	}

	fake := &testutil.FakeEngine{
		WriteOutput: true,
		Entered:     make(chan string, total),
		Release:     make(chan struct{}),
	}
	coordinator := batch.NewCoordinator(cfg, fake, zap.NewNop(), nil)

	b, err := coordinator.Start(context.Background(), items)
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	<-fake.Entered // one conversion in flight
	b.RequestStop()
	fake.Release <- struct{}{}

	s := b.Wait()
	if len(s.Items) != 1 {
		t.Fatalf("recorded %d outcomes, expected only the in-flight item", len(s.Items))
	}
	if s.NotProcessed != total-1 {
		t.Errorf("NotProcessed = %d, expected %d", s.NotProcessed, total-1)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output directory holds %d files, expected only the in-flight result", len(entries))
	}
}
