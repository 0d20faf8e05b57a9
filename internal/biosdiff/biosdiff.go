// Package biosdiff normalizes heterogeneous BIOS/BMC configuration exports
// into flat key→value maps and computes their differences. Two export shapes
// are understood: section-delimited flat text and a hierarchical XML tree;
// both flatten to the same logical result so exports from different firmware
// generations stay comparable.
package biosdiff

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// Missing is the sentinel a key compares against when it is absent from one
// side of a diff.
const Missing = "<missing>"

// Parse flattens a configuration export of either shape. The flat-text
// parser runs first; only when it finds no settings at all is the export
// treated as hierarchical.
func Parse(data []byte) (map[string]string, error) {
	if settings := ParseFlat(string(data)); len(settings) > 0 {
		return settings, nil
	}
	settings, err := ParseXML(data)
	if err != nil {
		return nil, fmt.Errorf("export is neither flat text nor parsable XML: %w", err)
	}
	return settings, nil
}

// ParseFlat parses the section-delimited text form:
//
//	[Section]
//	Key=Value        // optional comment
//
// yielding "Section|Key" → "Value", trimmed. A later occurrence of the same
// key overwrites the earlier one.
func ParseFlat(text string) map[string]string {
	settings := make(map[string]string)
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "<") {
			// blank, comment, or markup from the hierarchical form
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if idx := strings.Index(value, "//"); idx >= 0 {
			value = value[:idx]
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if section != "" {
			key = section + "|" + key
		}
		settings[key] = strings.TrimSpace(value)
	}

	return settings
}

// xmlNode is a shape-agnostic XML element.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// ParseXML flattens a hierarchical XML export. The document root is treated
// as purely structural and contributes nothing to paths; repeated sibling
// element names are disambiguated with a 1-based index ("User[2]"); a
// childless element with non-empty text is a leaf.
func ParseXML(data []byte) (map[string]string, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	settings := make(map[string]string)
	flattenChildren(root, "", settings)
	if len(settings) == 0 {
		return nil, fmt.Errorf("no settings found under root element %q", root.XMLName.Local)
	}
	return settings, nil
}

func flatten(n xmlNode, path string, out map[string]string) {
	if len(n.Children) == 0 {
		if text := strings.TrimSpace(n.Text); text != "" {
			out[path] = text
		}
		return
	}
	flattenChildren(n, path, out)
}

func flattenChildren(n xmlNode, path string, out map[string]string) {
	counts := make(map[string]int)
	for _, ch := range n.Children {
		counts[ch.XMLName.Local]++
	}

	seen := make(map[string]int)
	for _, ch := range n.Children {
		label := ch.XMLName.Local
		if counts[label] > 1 {
			seen[label]++
			label = fmt.Sprintf("%s[%d]", label, seen[label])
		}
		childPath := label
		if path != "" {
			childPath = path + "|" + label
		}
		flatten(ch, childPath, out)
	}
}

// Delta is one differing key between two exports.
type Delta struct {
	Key       string `json:"key"`
	Reference string `json:"reference"`
	Candidate string `json:"candidate"`
}

// Node-unique fields that differ between any two healthy nodes and would
// drown the signal: identity material and certificate validity dates.
var identitySubstrings = []string{
	"serial",
	"uuid",
	"guid",
	"password",
	"pwd",
	"hostname",
	"host name",
	"certificate",
	"valid from",
	"valid until",
}

// Network-identifying fields, excluded by default but comparable on request.
var networkSubstrings = []string{
	"mac",
	"ip addr",
	"ipaddr",
	"ipv4",
	"ipv6",
	"gateway",
	"subnet",
	"dns",
}

// excluded reports whether a key names a node-unique field.
func excluded(key string, includeNetwork bool) bool {
	k := strings.ToLower(key)
	for _, s := range identitySubstrings {
		if strings.Contains(k, s) {
			return true
		}
	}
	if includeNetwork {
		return false
	}
	for _, s := range networkSubstrings {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// Diff reports every key whose value differs between the reference and
// candidate settings. The key set is the union of both sides; an absent key
// compares against the Missing sentinel. Keys naming node-unique fields are
// dropped, network-identifying ones only when includeNetwork is false.
// Output is sorted by key for deterministic rendering.
func Diff(reference, candidate map[string]string, includeNetwork bool) []Delta {
	keys := make(map[string]struct{}, len(reference)+len(candidate))
	for k := range reference {
		keys[k] = struct{}{}
	}
	for k := range candidate {
		keys[k] = struct{}{}
	}

	var deltas []Delta
	for k := range keys {
		if excluded(k, includeNetwork) {
			continue
		}
		ref, ok := reference[k]
		if !ok {
			ref = Missing
		}
		cand, ok := candidate[k]
		if !ok {
			cand = Missing
		}
		if ref != cand {
			deltas = append(deltas, Delta{Key: k, Reference: ref, Candidate: cand})
		}
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Key < deltas[j].Key })
	return deltas
}
