// Package executor walks a loaded manifest.PlanContext and drives a
// Firehose client through the program, patch, set-bootable and reset
// steps, in that order.
package executor

import (
	"os"
	"path/filepath"

	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/JoshuaDoes/qdl/manifest"
)

// ProgramApplier, PatchApplier, BootableApplier are the capability traits
// the executor needs from a Firehose client, kept narrow per spec.md §9's
// composition-over-inheritance note rather than importing *firehose.Client
// directly.
type ProgramApplier interface {
	ApplyProgram(prog *manifest.Program, f *os.File) error
}

type PatchApplier interface {
	ApplyPatch(p *manifest.Patch) error
}

type BootableApplier interface {
	SetBootable(partition uint32) error
	Reset() error
}

// Client is everything the executor needs from a Firehose session.
type Client interface {
	ProgramApplier
	PatchApplier
	BootableApplier
}

// Run walks plan's program entries, then its DISK patch entries, then
// marks the unique bootable partition (if any) and always resets the
// target, matching original_source/firehose.cpp's Firehose::run tail and
// program.cpp/patch.cpp's execute().
func Run(c Client, plan *manifest.PlanContext, incdir string) error {
	if err := runPrograms(c, plan, incdir); err != nil {
		return err
	}
	if err := runPatches(c, plan); err != nil {
		return err
	}

	part, err := plan.FindBootablePartition()
	switch err {
	case nil:
		if err := c.SetBootable(part); err != nil {
			return err
		}
	case manifest.ErrNoBootablePartition:
		qlog.L().Infof("no boot partition found")
	case manifest.ErrMultipleBootablePartitions:
		qlog.L().Errorf("more than one bootable partition found, skipping set-bootable")
	default:
		return err
	}

	return c.Reset()
}

func runPrograms(c Client, plan *manifest.PlanContext, incdir string) error {
	for _, prog := range plan.Programs {
		if prog.Filename == "" {
			continue
		}

		f, err := openProgramFile(prog.Filename, incdir)
		if err != nil {
			qlog.L().Infof("Unable to open %s...ignoring", prog.Filename)
			continue
		}

		err = c.ApplyProgram(prog, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// openProgramFile searches <incdir>/<filename> first, but only if incdir
// is set and that path exists; otherwise it falls back to filename as
// given, per original_source/program.cpp's execute().
func openProgramFile(filename, incdir string) (*os.File, error) {
	if incdir != "" {
		candidate := filepath.Join(incdir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return os.Open(candidate)
		}
	}
	return os.Open(filename)
}

func runPatches(c Client, plan *manifest.PlanContext) error {
	for _, p := range plan.Patches {
		if p.Filename != "DISK" {
			continue
		}
		if err := c.ApplyPatch(p); err != nil {
			return err
		}
	}
	return nil
}
