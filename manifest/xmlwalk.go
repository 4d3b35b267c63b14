package manifest

import (
	"encoding/xml"
	"io"
)

// rootElement returns the name of r's document root element, consuming
// nothing beyond it.
func rootElement(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

// childNames returns the local names of the root element's direct
// children, used by detect.go to tell a program file from a UFS file (both
// rooted at <data>).
func childNames(r io.Reader) ([]string, error) {
	var names []string
	err := walkChildren(r, func(name string, _ []xml.Attr) error {
		names = append(names, name)
		return nil
	})
	return names, err
}

// walkChildren decodes r and invokes handle once per direct child element
// of the document root, passing that child's tag name and attributes.
// Nested content beneath each child is skipped; this package only ever
// needs a flat list of sibling tags with their attributes.
func walkChildren(r io.Reader, handle func(name string, attrs []xml.Attr) error) error {
	dec := xml.NewDecoder(r)
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				if err := handle(t.Name.Local, t.Attr); err != nil {
					return err
				}
				if err := dec.Skip(); err != nil {
					return err
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
}
