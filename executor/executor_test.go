package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JoshuaDoes/qdl/manifest"
)

type fakeClient struct {
	programmed  []string
	patched     []string
	bootablePart *uint32
	reset       bool
	failProgram bool
}

func (f *fakeClient) ApplyProgram(prog *manifest.Program, file *os.File) error {
	f.programmed = append(f.programmed, prog.Label)
	if f.failProgram {
		return errBoom
	}
	return nil
}

func (f *fakeClient) ApplyPatch(p *manifest.Patch) error {
	f.patched = append(f.patched, p.What)
	return nil
}

func (f *fakeClient) SetBootable(partition uint32) error {
	f.bootablePart = &partition
	return nil
}

func (f *fakeClient) Reset() error {
	f.reset = true
	return nil
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}

func writeFixtureFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunSkipsEmptyFilenameAndUsesIncdirFirst(t *testing.T) {
	incdir := t.TempDir()
	writeFixtureFile(t, incdir, "xbl.mbn")

	plan := &manifest.PlanContext{Programs: []*manifest.Program{
		{Filename: "", Label: "skip-me"},
		{Filename: "xbl.mbn", Label: "xbl", Partition: 0},
	}}

	c := &fakeClient{}
	if err := Run(c, plan, incdir); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(c.programmed) != 1 || c.programmed[0] != "xbl" {
		t.Fatalf("programmed = %v, want [xbl]", c.programmed)
	}
	if c.bootablePart == nil || *c.bootablePart != 0 {
		t.Fatalf("bootablePart = %v, want 0", c.bootablePart)
	}
	if !c.reset {
		t.Error("Reset was not called")
	}
}

func TestRunFallsBackWhenIncdirFileMissing(t *testing.T) {
	incdir := t.TempDir() // empty; the file named below is not here
	elsewhere := t.TempDir()
	writeFixtureFile(t, elsewhere, "xbl.mbn")
	absPath := filepath.Join(elsewhere, "xbl.mbn")

	plan := &manifest.PlanContext{Programs: []*manifest.Program{
		{Filename: absPath, Label: "xbl", Partition: 2},
	}}

	c := &fakeClient{}
	if err := Run(c, plan, incdir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.programmed) != 1 {
		t.Fatalf("programmed = %v, want one entry via fallback path", c.programmed)
	}
}

func TestRunPatchesOnlyDISK(t *testing.T) {
	plan := &manifest.PlanContext{Patches: []*manifest.Patch{
		{Filename: "DISK", What: "flag A"},
		{Filename: "firmware.bin", What: "flag B"},
	}}

	c := &fakeClient{}
	if err := Run(c, plan, ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.patched) != 1 || c.patched[0] != "flag A" {
		t.Fatalf("patched = %v, want [flag A]", c.patched)
	}
}

func TestRunTwoBootableLabelsSkipsSetBootableButStillResets(t *testing.T) {
	plan := &manifest.PlanContext{Programs: []*manifest.Program{
		{Label: "xbl", Partition: 0},
		{Label: "sbl1", Partition: 1},
	}}

	c := &fakeClient{}
	if err := Run(c, plan, ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.bootablePart != nil {
		t.Errorf("bootablePart = %v, want nil (ambiguous, skipped)", c.bootablePart)
	}
	if !c.reset {
		t.Error("Reset must still be called even when set-bootable is skipped")
	}
}

func TestRunNoBootableLabelStillResets(t *testing.T) {
	plan := &manifest.PlanContext{Programs: []*manifest.Program{
		{Label: "modem", Partition: 3},
	}}

	c := &fakeClient{}
	if err := Run(c, plan, ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.bootablePart != nil {
		t.Error("bootablePart should be nil when no label matches")
	}
	if !c.reset {
		t.Error("Reset must still be called")
	}
}

func TestRunProgramFailureAborts(t *testing.T) {
	dir := t.TempDir()
	writeFixtureFile(t, dir, "xbl.mbn")

	plan := &manifest.PlanContext{Programs: []*manifest.Program{
		{Filename: "xbl.mbn", Label: "xbl", Partition: 0},
	}}

	c := &fakeClient{failProgram: true}
	if err := Run(c, plan, dir); err != errBoom {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if c.reset {
		t.Error("Reset must not be called when programming fails")
	}
}
