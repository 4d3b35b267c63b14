package firehose

import (
	"strconv"

	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/JoshuaDoes/qdl/manifest"
)

// ApplyPatch emits a <patch> command for p and waits for its ACK. Callers
// are expected to have already filtered to Filename == "DISK" entries, per
// spec.md §4.4.3.
func (c *Client) ApplyPatch(p *manifest.Patch) error {
	qlog.L().Infof("[PATCH] %s", p.What)

	node := newElement("patch")
	node.set("SECTOR_SIZE_IN_BYTES", strconv.FormatUint(uint64(p.SectorSize), 10))
	node.set("byte_offset", strconv.FormatUint(uint64(p.ByteOffset), 10))
	node.set("filename", p.Filename)
	node.set("physical_partition_number", strconv.FormatUint(uint64(p.Partition), 10))
	node.set("size_in_bytes", strconv.FormatUint(uint64(p.SizeInBytes), 10))
	node.set("start_sector", p.StartSector)
	node.set("value", p.Value)

	if err := write(c.t, *node); err != nil {
		return err
	}

	if _, err := read(c.t, 0, nopParser); err != nil {
		qlog.L().Errorf("[PATCH] %v", err)
		return err
	}
	return nil
}
