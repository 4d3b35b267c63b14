package manifest

import (
	"encoding/xml"
	"os"

	"github.com/JoshuaDoes/qdl/internal/qlog"
)

// LoadPrograms parses a <data><program .../>...</data> file and appends its
// entries, in document order, to p.Programs.
func (p *PlanContext) LoadPrograms(path string) error {
	f, err := os.Open(path)
	if err != nil {
		qlog.L().Errorf("[PROGRAM] failed to open %s: %v", path, err)
		return err
	}
	defer f.Close()

	return walkChildren(f, func(name string, attrs []xml.Attr) error {
		if name != "program" {
			qlog.L().Infof("[PROGRAM] unrecognized tag %q, ignoring", name)
			return nil
		}

		errs := 0
		prog := &Program{
			SectorSize:  attrUnsigned(attrs, "SECTOR_SIZE_IN_BYTES", &errs),
			FileOffset:  attrUnsigned(attrs, "file_sector_offset", &errs),
			Filename:    attrString(attrs, "filename", &errs),
			Label:       attrString(attrs, "label", &errs),
			NumSectors:  attrUnsigned(attrs, "num_partition_sectors", &errs),
			Partition:   attrUnsigned(attrs, "physical_partition_number", &errs),
			StartSector: attrString(attrs, "start_sector", &errs),
		}

		if errs > 0 {
			qlog.L().Errorf("[PROGRAM] errors while parsing program")
			return ErrMissingAttribute
		}

		p.Programs = append(p.Programs, prog)
		return nil
	})
}
