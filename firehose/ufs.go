package firehose

import (
	"strconv"
	"time"

	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/JoshuaDoes/qdl/manifest"
)

// sleep is time.Sleep, overridable in tests so the OTP countdown doesn't
// actually block five seconds.
var sleep = time.Sleep

func (c *Client) sendUFSTag(node *xmlElement) error {
	if err := write(c.t, *node); err != nil {
		return err
	}
	if _, err := read(c.t, 0, nopParser); err != nil {
		qlog.L().Errorf("[UFS] %v", err)
		return err
	}
	return nil
}

// ApplyUFSCommon sends the <ufs bNumberLU=.../> descriptor. The wire
// bConfigDescrLock attribute passes through wireLockValue, the named
// safety policy from spec.md §9.
func (c *Client) ApplyUFSCommon(common *manifest.UFSCommon) error {
	node := newElement("ufs")
	node.set("bNumberLU", strconv.FormatUint(uint64(common.BNumberLU), 10))
	node.set("bBootEnable", boolAttr(common.BBootEnable))
	node.set("bDescrAccessEn", boolAttr(common.BDescrAccessEn))
	node.set("bInitPowerMode", strconv.FormatUint(uint64(common.BInitPowerMode), 10))
	node.set("bHighPriorityLUN", strconv.FormatUint(uint64(common.BHighPriorityLUN), 10))
	node.set("bSecureRemovalType", strconv.FormatUint(uint64(common.BSecureRemovalType), 10))
	node.set("bInitActiveICCLevel", strconv.FormatUint(uint64(common.BInitActiveICCLevel), 10))
	node.set("wPeriodicRTCUpdate", strconv.FormatUint(uint64(common.WPeriodicRTCUpdate), 10))
	node.set("bConfigDescrLock", boolAttr(wireLockValue(common.BConfigDescrLock)))
	return c.sendUFSTag(node)
}

// ApplyUFSBody sends one <ufs LUNum=.../> logical-unit descriptor.
func (c *Client) ApplyUFSBody(body *manifest.UFSBody) error {
	node := newElement("ufs")
	node.set("LUNum", strconv.FormatUint(uint64(body.LUNum), 10))
	node.set("bLUEnable", boolAttr(body.BLUEnable))
	node.set("bBootLunID", strconv.FormatUint(uint64(body.BBootLunID), 10))
	node.set("size_in_kb", strconv.FormatUint(uint64(body.SizeInKB), 10))
	node.set("bDataReliability", strconv.FormatUint(uint64(body.BDataReliability), 10))
	node.set("bLUWriteProtect", strconv.FormatUint(uint64(body.BLUWriteProtect), 10))
	node.set("bMemoryType", strconv.FormatUint(uint64(body.BMemoryType), 10))
	node.set("bLogicalBlockSize", strconv.FormatUint(uint64(body.BLogicalBlockSize), 10))
	node.set("bProvisioningType", strconv.FormatUint(uint64(body.BProvisioningType), 10))
	node.set("wContextCapabilities", strconv.FormatUint(uint64(body.WContextCapabilities), 10))
	if body.Desc != "" {
		node.set("desc", body.Desc)
	}
	return c.sendUFSTag(node)
}

// ApplyUFSEpilogue sends the closing <ufs LUNtoGrow=.../> tag with the
// given commit flag.
func (c *Client) ApplyUFSEpilogue(epilogue *manifest.UFSEpilogue, commit bool) error {
	node := newElement("ufs")
	node.set("LUNtoGrow", strconv.FormatUint(uint64(epilogue.LUNtoGrow), 10))
	node.set("commit", boolAttr(commit))
	return c.sendUFSTag(node)
}

// ProvisionUFS executes plan.Common, plan.Bodies and plan.Epilogue twice:
// first with commit=0 (a dry run the target validates without committing),
// then, only if that succeeded, a second identical pass with commit=1. If
// Common.BConfigDescrLock is set, a five-second countdown precedes the
// real pass, since the operation is one-time-programmable.
func (c *Client) ProvisionUFS(plan *manifest.UFSPlan) error {
	if plan.Common.BConfigDescrLock {
		qlog.L().Infof("Attention! Irreversible provisioning will start in 5 s")
		for i := 5; i > 0; i-- {
			qlog.L().Infof(".")
			sleep(time.Second)
		}
	}

	if err := c.runUFSPass(plan, false); err != nil {
		qlog.L().Errorf("UFS provisioning impossible, provisioning XML may be corrupted")
		return err
	}

	return c.runUFSPass(plan, true)
}

func (c *Client) runUFSPass(plan *manifest.UFSPlan, commit bool) error {
	if err := c.ApplyUFSCommon(plan.Common); err != nil {
		return err
	}
	for _, body := range plan.Bodies {
		if err := c.ApplyUFSBody(body); err != nil {
			return err
		}
	}
	return c.ApplyUFSEpilogue(plan.Epilogue, commit)
}
