package manifest

import (
	"encoding/xml"
	"strconv"
)

func findAttr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// attrString returns the named attribute, incrementing *errs if it is
// absent. An empty value is not itself an error, matching spec.md's
// "filename may be empty" allowance.
func attrString(attrs []xml.Attr, name string, errs *int) string {
	v, ok := findAttr(attrs, name)
	if !ok {
		*errs++
	}
	return v
}

// attrUnsigned parses the named attribute as a base-10 uint32,
// incrementing *errs if it is absent or not a valid unsigned integer.
func attrUnsigned(attrs []xml.Attr, name string, errs *int) uint32 {
	v, ok := findAttr(attrs, name)
	if !ok {
		*errs++
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		*errs++
		return 0
	}
	return uint32(n)
}

func attrBool(attrs []xml.Attr, name string, errs *int) bool {
	return attrUnsigned(attrs, name, errs) != 0
}
