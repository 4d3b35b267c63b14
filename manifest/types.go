// Package manifest holds the in-memory model of the flashing plan parsed
// from the program/patch/UFS XML manifests named on the command line, and
// replaces the original's singly-linked global lists with ordered slices
// owned by a PlanContext value.
package manifest

// Program is one <program> entry: a single partition image to stream
// through Firehose.
type Program struct {
	SectorSize  uint32
	FileOffset  uint32 // parsed, never re-serialized; see firehose/program.go
	Filename    string
	Label       string
	NumSectors  uint32
	Partition   uint32
	StartSector string // opaque, may be symbolic (e.g. "NUM_DISK_SECTORS-34")
}

// Patch is one <patch> entry. Only entries with Filename == "DISK" are
// executed; the rest are firmware-side patches the target applies itself.
type Patch struct {
	SectorSize  uint32
	ByteOffset  uint32
	Filename    string
	Partition   uint32
	SizeInBytes uint32
	StartSector string
	Value       string
	What        string
}

// UFSCommon is the single <ufs bNumberLU=.../> descriptor of a UFS plan.
type UFSCommon struct {
	BNumberLU           uint32
	BBootEnable         bool
	BDescrAccessEn      bool
	BInitPowerMode      uint32
	BHighPriorityLUN    uint32
	BSecureRemovalType  uint32
	BInitActiveICCLevel uint32
	WPeriodicRTCUpdate  uint32
	BConfigDescrLock    bool
}

// UFSBody is one <ufs LUNum=.../> logical-unit descriptor.
type UFSBody struct {
	LUNum               uint32
	BLUEnable           bool
	BBootLunID          uint32
	SizeInKB            uint32
	BDataReliability    uint32
	BLUWriteProtect     uint32
	BMemoryType         uint32
	BLogicalBlockSize   uint32
	BProvisioningType   uint32
	WContextCapabilities uint32
	Desc                string
}

// UFSEpilogue is the closing <ufs LUNtoGrow=.../> tag.
type UFSEpilogue struct {
	LUNtoGrow uint32
}

// UFSPlan is a complete provisioning plan: exactly one Common, one or more
// Bodies, and one Epilogue.
type UFSPlan struct {
	Common   *UFSCommon
	Bodies   []*UFSBody
	Epilogue *UFSEpilogue
}

// PlanContext owns the ordered entries loaded from the manifests named on
// the command line. It is built once during CLI-driven loading and is
// read-only for the rest of the run.
type PlanContext struct {
	Programs []*Program
	Patches  []*Patch
	UFS      *UFSPlan
}

// NeedProvisioning reports whether a UFS plan with a complete epilogue was
// loaded, per spec.md's need_provisioning().
func (p *PlanContext) NeedProvisioning() bool {
	return p.UFS != nil && p.UFS.Epilogue != nil
}

// bootable labels scanned for by FindBootablePartition.
var bootableLabels = map[string]bool{
	"xbl":   true,
	"xbl_a": true,
	"sbl1":  true,
}

// FindBootablePartition scans Programs for a unique bootable label among
// {xbl, xbl_a, sbl1} and returns its partition number. It returns
// ErrNoBootablePartition if none match and ErrMultipleBootablePartitions if
// more than one does.
func (p *PlanContext) FindBootablePartition() (uint32, error) {
	found := false
	var part uint32

	for _, prog := range p.Programs {
		if !bootableLabels[prog.Label] {
			continue
		}
		if found {
			return 0, ErrMultipleBootablePartitions
		}
		found = true
		part = prog.Partition
	}

	if !found {
		return 0, ErrNoBootablePartition
	}
	return part, nil
}
