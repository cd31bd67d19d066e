package core

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
)

// containerNames lists record element names in priority order. The first
// name with at least one element anywhere in the document wins.
var containerNames = []string{"row", "record", "item", "data"}

// spacedTag matches opening or closing tags whose name contains spaces,
// such as <Metrica A> or </Metrica A>, which spreadsheet tools emit.
var spacedTag = regexp.MustCompile(`<(/?)([A-Za-z0-9_]+(?:\s+[A-Za-z0-9_]+)+)\s*>`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// xmlNode is a minimal element tree: local name, child elements and the
// concatenated text of the whole subtree.
type xmlNode struct {
	name     string
	children []*xmlNode
	text     strings.Builder
}

// parseXML reads records from the first matching container element set.
// Each container's direct child elements become fields holding their
// trimmed text content.
func parseXML(content string) ([]RawRecord, error) {
	elements, err := buildXMLTree(sanitizeTagNames(content))
	if err != nil {
		return nil, parseError(FormatXML, "malformed XML", err)
	}

	for _, name := range containerNames {
		var records []RawRecord
		for _, el := range elements {
			if el.name != name {
				continue
			}
			rec := make(RawRecord, 0, len(el.children))
			for _, child := range el.children {
				rec = append(rec, RawField{
					Label: child.name,
					Value: TextRaw(strings.TrimSpace(child.text.String())),
				})
			}
			records = append(records, rec)
		}
		if len(records) > 0 {
			return records, nil
		}
	}

	return nil, parseError(FormatXML, "no data nodes (expected row, record, item or data)", nil)
}

// sanitizeTagNames rewrites whitespace inside tag names to underscores.
func sanitizeTagNames(content string) string {
	return spacedTag.ReplaceAllStringFunc(content, func(tag string) string {
		m := spacedTag.FindStringSubmatch(tag)
		return "<" + m[1] + whitespaceRun.ReplaceAllString(m[2], "_") + ">"
	})
}

// buildXMLTree parses a single-rooted document and returns every element
// in document order.
func buildXMLTree(content string) ([]*xmlNode, error) {
	d := xml.NewDecoder(strings.NewReader(content))
	// content is already UTF-8; ignore any declared encoding.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		all      []*xmlNode
		stack    []*xmlNode
		rootSeen bool
	)

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				if rootSeen {
					return nil, errors.New("multiple root elements")
				}
				rootSeen = true
			}
			node := &xmlNode{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
			all = append(all, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, errors.New("text outside the root element")
				}
				continue
			}
			for _, open := range stack {
				open.text.Write(t)
			}
		}
	}

	if !rootSeen {
		return nil, errors.New("no root element")
	}
	return all, nil
}
