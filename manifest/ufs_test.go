package manifest

import "testing"

func ufsXML(lock int) string {
	return `<?xml version="1.0" ?>
<data>
  <ufs bNumberLU="2" bBootEnable="1" bDescrAccessEn="1" bInitPowerMode="1" bHighPriorityLUN="0" bSecureRemovalType="0" bInitActiveICCLevel="0" wPeriodicRTCUpdate="0" bConfigDescrLock="` + itoa(lock) + `"/>
  <ufs LUNum="0" bLUEnable="1" bBootLunID="1" size_in_kb="1048576" bDataReliability="0" bLUWriteProtect="0" bMemoryType="0" bLogicalBlockSize="12" bProvisioningType="2" wContextCapabilities="0" desc="GPT"/>
  <ufs LUNum="1" bLUEnable="1" bBootLunID="0" size_in_kb="2097152" bDataReliability="0" bLUWriteProtect="0" bMemoryType="0" bLogicalBlockSize="12" bProvisioningType="2" wContextCapabilities="0" desc="userdata"/>
  <ufs LUNtoGrow="1" commit="0"/>
</data>
`
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	return "1"
}

func TestLoadUFSCompletePlan(t *testing.T) {
	path := writeTemp(t, "ufs.xml", ufsXML(0))

	p := &PlanContext{}
	if err := p.LoadUFS(path, false); err != nil {
		t.Fatalf("LoadUFS: %v", err)
	}

	if p.UFS == nil || p.UFS.Common == nil || p.UFS.Epilogue == nil {
		t.Fatal("incomplete plan loaded")
	}
	if len(p.UFS.Bodies) != 2 {
		t.Fatalf("got %d bodies, want 2", len(p.UFS.Bodies))
	}
	if !p.NeedProvisioning() {
		t.Error("NeedProvisioning() = false, want true once an epilogue is loaded")
	}
}

func TestLoadUFSLockMismatchAborts(t *testing.T) {
	path := writeTemp(t, "ufs.xml", ufsXML(1))

	p := &PlanContext{}
	err := p.LoadUFS(path, false) // CLI omits --finalize-provisioning, XML says lock=1
	if err != ErrLockMismatch {
		t.Fatalf("err = %v, want ErrLockMismatch", err)
	}
	if p.UFS != nil {
		t.Error("UFS plan should not be installed on lock mismatch")
	}
}

func TestLoadUFSLockMatchSucceeds(t *testing.T) {
	path := writeTemp(t, "ufs.xml", ufsXML(1))

	p := &PlanContext{}
	if err := p.LoadUFS(path, true); err != nil {
		t.Fatalf("LoadUFS: %v", err)
	}
	if !p.UFS.Common.BConfigDescrLock {
		t.Error("BConfigDescrLock = false, want true")
	}
}

func TestLoadUFSSecondPlanRejected(t *testing.T) {
	path := writeTemp(t, "ufs.xml", ufsXML(0))

	p := &PlanContext{}
	if err := p.LoadUFS(path, false); err != nil {
		t.Fatalf("LoadUFS: %v", err)
	}
	if err := p.LoadUFS(path, false); err != ErrMultipleUFSPlans {
		t.Fatalf("err = %v, want ErrMultipleUFSPlans", err)
	}
}

func TestLoadUFSIncompletePlanRejected(t *testing.T) {
	path := writeTemp(t, "ufs.xml", `<?xml version="1.0" ?>
<data>
  <ufs bNumberLU="1" bBootEnable="0" bDescrAccessEn="0" bInitPowerMode="0" bHighPriorityLUN="0" bSecureRemovalType="0" bInitActiveICCLevel="0" wPeriodicRTCUpdate="0" bConfigDescrLock="0"/>
</data>
`)

	p := &PlanContext{}
	if err := p.LoadUFS(path, false); err != ErrIncomplete {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}
}
