package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const programXML = `<?xml version="1.0" ?>
<data>
  <program SECTOR_SIZE_IN_BYTES="4096" file_sector_offset="0" filename="xbl.mbn" label="xbl" num_partition_sectors="100" physical_partition_number="0" start_sector="0"/>
  <program SECTOR_SIZE_IN_BYTES="4096" file_sector_offset="0" filename="" label="empty" num_partition_sectors="0" physical_partition_number="1" start_sector="NUM_DISK_SECTORS-34"/>
  <unknown foo="bar"/>
</data>
`

func TestLoadProgramsOrderAndFields(t *testing.T) {
	path := writeTemp(t, "program.xml", programXML)

	p := &PlanContext{}
	if err := p.LoadPrograms(path); err != nil {
		t.Fatalf("LoadPrograms: %v", err)
	}

	if len(p.Programs) != 2 {
		t.Fatalf("got %d programs, want 2", len(p.Programs))
	}

	first := p.Programs[0]
	if first.Label != "xbl" || first.Partition != 0 || first.SectorSize != 4096 {
		t.Errorf("first program = %+v, unexpected fields", first)
	}

	second := p.Programs[1]
	if second.Filename != "" {
		t.Errorf("second program filename = %q, want empty", second.Filename)
	}
	if second.StartSector != "NUM_DISK_SECTORS-34" {
		t.Errorf("start_sector = %q, want symbolic string preserved verbatim", second.StartSector)
	}
}

func TestLoadProgramsRoundTrip(t *testing.T) {
	path := writeTemp(t, "program.xml", programXML)

	p1 := &PlanContext{}
	if err := p1.LoadPrograms(path); err != nil {
		t.Fatalf("LoadPrograms: %v", err)
	}

	p2 := &PlanContext{}
	if err := p2.LoadPrograms(path); err != nil {
		t.Fatalf("LoadPrograms (second parse): %v", err)
	}

	if len(p1.Programs) != len(p2.Programs) {
		t.Fatalf("parse counts differ: %d vs %d", len(p1.Programs), len(p2.Programs))
	}
	for i := range p1.Programs {
		if *p1.Programs[i] != *p2.Programs[i] {
			t.Errorf("program %d differs between parses: %+v vs %+v", i, p1.Programs[i], p2.Programs[i])
		}
	}
}

func TestFindBootablePartitionUnique(t *testing.T) {
	p := &PlanContext{Programs: []*Program{
		{Label: "modem", Partition: 3},
		{Label: "xbl", Partition: 0},
	}}

	part, err := p.FindBootablePartition()
	if err != nil {
		t.Fatalf("FindBootablePartition: %v", err)
	}
	if part != 0 {
		t.Errorf("part = %d, want 0", part)
	}
}

func TestFindBootablePartitionNone(t *testing.T) {
	p := &PlanContext{Programs: []*Program{{Label: "modem", Partition: 3}}}

	if _, err := p.FindBootablePartition(); err != ErrNoBootablePartition {
		t.Fatalf("err = %v, want ErrNoBootablePartition", err)
	}
}

func TestFindBootablePartitionMultiple(t *testing.T) {
	p := &PlanContext{Programs: []*Program{
		{Label: "xbl", Partition: 0},
		{Label: "sbl1", Partition: 1},
	}}

	if _, err := p.FindBootablePartition(); err != ErrMultipleBootablePartitions {
		t.Fatalf("err = %v, want ErrMultipleBootablePartitions", err)
	}
}
