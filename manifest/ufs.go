package manifest

import (
	"encoding/xml"
	"os"

	"github.com/JoshuaDoes/qdl/internal/qlog"
)

// LoadUFS parses a <data><ufs .../>...</data> provisioning plan and installs
// it as p.UFS. At most one UFS plan may be loaded per run; a second call
// returns ErrMultipleUFSPlans. finalizeProvisioning is the CLI's
// --finalize-provisioning flag, checked against the parsed
// Common.BConfigDescrLock per spec.md's invariant.
func (p *PlanContext) LoadUFS(path string, finalizeProvisioning bool) error {
	if p.UFS != nil {
		qlog.L().Errorf("[UFS] only one UFS provisioning XML allowed, %s ignored", path)
		return ErrMultipleUFSPlans
	}

	f, err := os.Open(path)
	if err != nil {
		qlog.L().Errorf("[UFS] failed to open %s: %v", path, err)
		return err
	}
	defer f.Close()

	plan := &UFSPlan{}
	walkErr := walkChildren(f, func(name string, attrs []xml.Attr) error {
		if name != "ufs" {
			qlog.L().Infof("[UFS] unrecognized tag %q, ignoring", name)
			return nil
		}

		switch {
		case hasAttr(attrs, "bNumberLU"):
			if plan.Common != nil {
				return ErrDuplicateSection
			}
			common, err := parseUFSCommon(attrs)
			if err != nil {
				return err
			}
			plan.Common = common

		case hasAttr(attrs, "LUNum"):
			body, err := parseUFSBody(attrs)
			if err != nil {
				return err
			}
			plan.Bodies = append(plan.Bodies, body)

		case hasAttr(attrs, "commit"):
			if plan.Epilogue != nil {
				return ErrDuplicateSection
			}
			epilogue, err := parseUFSEpilogue(attrs)
			if err != nil {
				return err
			}
			plan.Epilogue = epilogue

		default:
			qlog.L().Errorf("[UFS] unknown ufs tag shape in %s", path)
			return ErrIncomplete
		}
		return nil
	})

	if walkErr != nil {
		qlog.L().Errorf("[UFS] %s seems to be corrupted, ignore", path)
		return walkErr
	}

	if plan.Common == nil || len(plan.Bodies) == 0 || plan.Epilogue == nil {
		qlog.L().Errorf("[UFS] %s seems to be incomplete", path)
		return ErrIncomplete
	}

	if finalizeProvisioning != plan.Common.BConfigDescrLock {
		qlog.L().Errorf("[UFS] bConfigDescrLock %v in %s does not match --finalize-provisioning %v",
			plan.Common.BConfigDescrLock, path, finalizeProvisioning)
		return ErrLockMismatch
	}

	p.UFS = plan
	return nil
}

func hasAttr(attrs []xml.Attr, name string) bool {
	_, ok := findAttr(attrs, name)
	return ok
}

func parseUFSCommon(attrs []xml.Attr) (*UFSCommon, error) {
	errs := 0
	c := &UFSCommon{
		BNumberLU:           attrUnsigned(attrs, "bNumberLU", &errs),
		BBootEnable:         attrBool(attrs, "bBootEnable", &errs),
		BDescrAccessEn:      attrBool(attrs, "bDescrAccessEn", &errs),
		BInitPowerMode:      attrUnsigned(attrs, "bInitPowerMode", &errs),
		BHighPriorityLUN:    attrUnsigned(attrs, "bHighPriorityLUN", &errs),
		BSecureRemovalType:  attrUnsigned(attrs, "bSecureRemovalType", &errs),
		BInitActiveICCLevel: attrUnsigned(attrs, "bInitActiveICCLevel", &errs),
		WPeriodicRTCUpdate:  attrUnsigned(attrs, "wPeriodicRTCUpdate", &errs),
		BConfigDescrLock:    attrBool(attrs, "bConfigDescrLock", &errs),
	}
	if errs > 0 {
		qlog.L().Errorf("[UFS] errors while parsing common")
		return nil, ErrMissingAttribute
	}
	return c, nil
}

func parseUFSBody(attrs []xml.Attr) (*UFSBody, error) {
	errs := 0
	b := &UFSBody{
		LUNum:                attrUnsigned(attrs, "LUNum", &errs),
		BLUEnable:            attrBool(attrs, "bLUEnable", &errs),
		BBootLunID:           attrUnsigned(attrs, "bBootLunID", &errs),
		SizeInKB:             attrUnsigned(attrs, "size_in_kb", &errs),
		BDataReliability:     attrUnsigned(attrs, "bDataReliability", &errs),
		BLUWriteProtect:      attrUnsigned(attrs, "bLUWriteProtect", &errs),
		BMemoryType:          attrUnsigned(attrs, "bMemoryType", &errs),
		BLogicalBlockSize:    attrUnsigned(attrs, "bLogicalBlockSize", &errs),
		BProvisioningType:    attrUnsigned(attrs, "bProvisioningType", &errs),
		WContextCapabilities: attrUnsigned(attrs, "wContextCapabilities", &errs),
		Desc:                 attrString(attrs, "desc", &errs),
	}
	if errs > 0 {
		qlog.L().Errorf("[UFS] errors while parsing body")
		return nil, ErrMissingAttribute
	}
	return b, nil
}

func parseUFSEpilogue(attrs []xml.Attr) (*UFSEpilogue, error) {
	errs := 0
	e := &UFSEpilogue{
		LUNtoGrow: attrUnsigned(attrs, "LUNtoGrow", &errs),
	}
	if errs > 0 {
		qlog.L().Errorf("[UFS] errors while parsing epilogue")
		return nil, ErrMissingAttribute
	}
	return e, nil
}
