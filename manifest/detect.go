package manifest

import "os"

// FileType identifies which of the four recognized manifest shapes a file
// is, by root element, matching original_source/qdl.cpp's detect_type.
type FileType int

const (
	// TypeUnknown covers files that fail to parse or whose root element
	// matches none of the known shapes.
	TypeUnknown FileType = iota
	// TypePatch is a <patches>...</patches> file.
	TypePatch
	// TypeProgram is a <data>...</data> file whose children are <program>.
	TypeProgram
	// TypeUFS is a <data>...</data> file whose children are <ufs>.
	TypeUFS
	// TypeContents is a <contents> file: recognized, not implemented.
	TypeContents
)

// DetectType inspects path's root element (and, for <data> roots, its
// first recognized child) to classify the manifest without fully parsing
// it.
func DetectType(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	root, err := rootElement(f)
	if err != nil {
		return TypeUnknown, err
	}

	switch root {
	case "patches":
		return TypePatch, nil
	case "contents":
		return TypeContents, nil
	case "data":
		return detectDataType(path)
	default:
		return TypeUnknown, nil
	}
}

func detectDataType(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	names, err := childNames(f)
	if err != nil {
		return TypeUnknown, err
	}

	for _, n := range names {
		switch n {
		case "program":
			return TypeProgram, nil
		case "ufs":
			return TypeUFS, nil
		}
	}
	return TypeUnknown, nil
}
