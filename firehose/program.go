package firehose

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/JoshuaDoes/qdl/manifest"
	"github.com/pkg/errors"
)

// fwOnlyLabels are skipped when FirmwareOnly is set, matching
// original_source/firehose.cpp's apply_program fw_only check.
var fwOnlyLabels = map[string]bool{
	"system": true, "cust": true, "userdata": true,
	"keystore": true, "boot": true, "recovery": true, "sec": true,
}

// FirmwareOnly, when true, makes ApplyProgram silently skip entries whose
// label names a non-firmware partition, per spec.md §4.4.2's --firmware
// flag.
var FirmwareOnly bool

// ApplyProgram streams prog's payload file through a <program> command:
// emit the command, wait for ACK, seek to FileOffset, then stream chunks of
// at most MaxPayloadSize bytes, each a whole number of sectors (the last one
// covers only the remaining sectors, zero-padded to a sector boundary),
// until the whole image has been sent, finally waiting for the closing ACK.
func (c *Client) ApplyProgram(prog *manifest.Program, f *os.File) error {
	if FirmwareOnly && fwOnlyLabels[prog.Label] {
		qlog.L().Infof("[FIREHOSE]: skipping %s", prog.Label)
		return nil
	}

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "firehose: stat program file")
	}

	numSectors := uint32((fi.Size() + int64(prog.SectorSize) - 1) / int64(prog.SectorSize))
	if prog.NumSectors != 0 && numSectors > prog.NumSectors {
		qlog.L().Infof("[PROGRAM] %s truncated to %d", prog.Label, prog.NumSectors*prog.SectorSize)
		numSectors = prog.NumSectors
	}

	node := newElement("program")
	node.set("SECTOR_SIZE_IN_BYTES", strconv.FormatUint(uint64(prog.SectorSize), 10))
	node.set("num_partition_sectors", strconv.FormatUint(uint64(numSectors), 10))
	node.set("physical_partition_number", strconv.FormatUint(uint64(prog.Partition), 10))
	node.set("start_sector", prog.StartSector)
	if prog.Filename != "" {
		node.set("filename", prog.Filename)
	}

	if err := write(c.t, *node); err != nil {
		qlog.L().Errorf("[PROGRAM] failed to write program command")
		return err
	}
	if _, err := read(c.t, 0, nopParser); err != nil {
		qlog.L().Errorf("[PROGRAM] failed to setup programming")
		return err
	}

	t0 := time.Now()

	if _, err := f.Seek(int64(prog.FileOffset)*int64(prog.SectorSize), io.SeekStart); err != nil {
		return errors.Wrap(err, "firehose: seek program file")
	}

	buf := make([]byte, c.MaxPayloadSize)
	left := numSectors
	for left > 0 {
		chunkSectors := uint32(c.MaxPayloadSize) / prog.SectorSize
		if chunkSectors > left {
			chunkSectors = left
		}
		chunkBytes := int(chunkSectors) * int(prog.SectorSize)

		n, err := io.ReadFull(f, buf[:chunkBytes])
		if err != nil && err != io.ErrUnexpectedEOF {
			return errors.Wrap(err, "firehose: read program file")
		}
		for i := n; i < chunkBytes; i++ {
			buf[i] = 0
		}

		if _, err := c.t.Write(buf[:chunkBytes], true); err != nil {
			return errors.Wrap(err, "firehose: write program chunk")
		}

		left -= chunkSectors
	}

	elapsed := time.Since(t0)

	if _, err := read(c.t, 0, nopParser); err != nil {
		qlog.L().Errorf("[PROGRAM] failed")
		return err
	}

	totalBytes := uint64(prog.SectorSize) * uint64(numSectors)
	if elapsed > 0 {
		kbs := uint64(float64(totalBytes) / elapsed.Seconds() / 1024)
		qlog.L().Infof("[PROGRAM] flashed %q successfully at %dkB/s", prog.Label, kbs)
	} else {
		qlog.L().Infof("[PROGRAM] flashed %q successfully", prog.Label)
	}
	return nil
}
