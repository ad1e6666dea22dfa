// file: internal/calibre/opf.go
// version: 1.0.0
// guid: 13ded414-f9e8-44b2-a9e5-a58db7c90244

package calibre

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// OPF and Dublin Core namespaces used by Calibre metadata files.
const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	dcNamespace  = "http://purl.org/dc/elements/1.1/"
)

// Metadata maps OPF element names (namespace stripped, e.g. "title",
// "creator") to their text content. Elements that occur once map to a string;
// repeated elements collapse into a []string in document order.
type Metadata map[string]any

type opfPackage struct {
	XMLName  xml.Name    `xml:"http://www.idpf.org/2007/opf package"`
	Metadata opfMetadata `xml:"metadata"`
}

type opfMetadata struct {
	Elements []opfElement `xml:",any"`
}

type opfElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ParseOPF decodes an OPF document into a Metadata map. Only children of the
// <metadata> block are considered, matching what ebook-meta and
// fetch-ebook-metadata write. Dublin Core and OPF elements are treated alike:
// the key is the element's local name.
func ParseOPF(content []byte) (Metadata, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF content: %w", err)
	}

	md := Metadata{}
	for _, el := range pkg.Metadata.Elements {
		key := el.XMLName.Local
		if key == "" {
			continue
		}
		value := strings.TrimSpace(el.Value)

		existing, ok := md[key]
		if !ok {
			md[key] = value
			continue
		}
		switch prev := existing.(type) {
		case string:
			md[key] = []string{prev, value}
		case []string:
			md[key] = append(prev, value)
		}
	}
	return md, nil
}

// Strings returns the values stored under key as a slice, regardless of
// whether the element occurred once or many times.
func (m Metadata) Strings(key string) []string {
	switch v := m[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	}
	return nil
}
