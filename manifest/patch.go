package manifest

import (
	"encoding/xml"
	"os"

	"github.com/JoshuaDoes/qdl/internal/qlog"
)

// LoadPatches parses a <patches><patch .../>...</patches> file and appends
// its entries, in document order, to p.Patches.
func (p *PlanContext) LoadPatches(path string) error {
	f, err := os.Open(path)
	if err != nil {
		qlog.L().Errorf("[PATCH] failed to open %s: %v", path, err)
		return err
	}
	defer f.Close()

	return walkChildren(f, func(name string, attrs []xml.Attr) error {
		if name != "patch" {
			qlog.L().Infof("[PATCH] unrecognized tag %q, ignoring", name)
			return nil
		}

		errs := 0
		patch := &Patch{
			SectorSize:  attrUnsigned(attrs, "SECTOR_SIZE_IN_BYTES", &errs),
			ByteOffset:  attrUnsigned(attrs, "byte_offset", &errs),
			Filename:    attrString(attrs, "filename", &errs),
			Partition:   attrUnsigned(attrs, "physical_partition_number", &errs),
			SizeInBytes: attrUnsigned(attrs, "size_in_bytes", &errs),
			StartSector: attrString(attrs, "start_sector", &errs),
			Value:       attrString(attrs, "value", &errs),
			What:        attrString(attrs, "what", &errs),
		}

		if errs > 0 {
			qlog.L().Errorf("[PATCH] errors while parsing patch")
			return ErrMissingAttribute
		}

		p.Patches = append(p.Patches, patch)
		return nil
	})
}
