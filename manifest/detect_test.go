package manifest

import "testing"

func TestDetectTypePatch(t *testing.T) {
	path := writeTemp(t, "x.xml", patchXML)
	typ, err := DetectType(path)
	if err != nil {
		t.Fatalf("DetectType: %v", err)
	}
	if typ != TypePatch {
		t.Errorf("type = %v, want TypePatch", typ)
	}
}

func TestDetectTypeProgram(t *testing.T) {
	path := writeTemp(t, "x.xml", programXML)
	typ, err := DetectType(path)
	if err != nil {
		t.Fatalf("DetectType: %v", err)
	}
	if typ != TypeProgram {
		t.Errorf("type = %v, want TypeProgram", typ)
	}
}

func TestDetectTypeUFS(t *testing.T) {
	path := writeTemp(t, "x.xml", ufsXML(0))
	typ, err := DetectType(path)
	if err != nil {
		t.Fatalf("DetectType: %v", err)
	}
	if typ != TypeUFS {
		t.Errorf("type = %v, want TypeUFS", typ)
	}
}

func TestDetectTypeContents(t *testing.T) {
	path := writeTemp(t, "x.xml", "<contents></contents>")
	typ, err := DetectType(path)
	if err != nil {
		t.Fatalf("DetectType: %v", err)
	}
	if typ != TypeContents {
		t.Errorf("type = %v, want TypeContents", typ)
	}
}

func TestDetectTypeUnknown(t *testing.T) {
	path := writeTemp(t, "x.xml", "<mystery></mystery>")
	typ, err := DetectType(path)
	if err != nil {
		t.Fatalf("DetectType: %v", err)
	}
	if typ != TypeUnknown {
		t.Errorf("type = %v, want TypeUnknown", typ)
	}
}
