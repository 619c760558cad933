// Package output renders scan results and computed identifiers.
package output

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/serialver-dev/serialver/internal/fileutil"
	"github.com/serialver-dev/serialver/internal/scan"
	"github.com/serialver-dev/serialver/internal/suid"
)

// Format selects how results are written.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q (supported: text, json, jsonl, yaml)", value)
}

// Identifier is the computed identifier of one class.
type Identifier struct {
	File         string                `json:"file" yaml:"file"`
	Class        string                `json:"class" yaml:"class"`
	Value        int64                 `json:"value" yaml:"value"`
	Serializable bool                  `json:"serializable" yaml:"serializable"`
	Declaration  string                `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Descriptor   *suid.ClassDescriptor `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
}

// WriteResults writes scan results in format.
func WriteResults(w io.Writer, format Format, results []scan.Result) error {
	if results == nil {
		results = []scan.Result{}
	}
	switch format {
	case FormatText:
		_, err := io.WriteString(w, RenderTable(results))
		return err
	default:
		return writeStructured(w, format, results)
	}
}

// WriteIdentifiers writes computed identifiers in format.
func WriteIdentifiers(w io.Writer, format Format, ids []Identifier) error {
	if ids == nil {
		ids = []Identifier{}
	}
	if format != FormatText {
		return writeStructured(w, format, ids)
	}

	var buf bytes.Buffer
	for _, id := range ids {
		fmt.Fprintf(&buf, "%s: %dL", id.Class, id.Value)
		if !id.Serializable {
			buf.WriteString(" (not serializable)")
		}
		buf.WriteByte('\n')
		if id.Declaration != "" {
			fmt.Fprintf(&buf, "  %s\n", id.Declaration)
		}
		if id.Descriptor != nil {
			data, err := yaml.Marshal(id.Descriptor)
			if err != nil {
				return fmt.Errorf("failed to encode descriptor of %s: %w", id.Class, err)
			}
			for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
				fmt.Fprintf(&buf, "    %s\n", line)
			}
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeStructured[T any](w io.Writer, format Format, records []T) error {
	switch format {
	case FormatJSON:
		return fileutil.WriteJSON(w, records)
	case FormatJSONL:
		data, err := fileutil.EncodeJSONL(records)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(records); err != nil {
			return err
		}
		return encoder.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// RenderTable renders results as an aligned text table with per-status totals.
func RenderTable(results []scan.Result) string {
	if len(results) == 0 {
		return "no serializable classes found\n"
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Line", "Class", "Computed", "Declared", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	for _, r := range results {
		declared := "-"
		if r.Declared != nil {
			declared = strconv.FormatInt(*r.Declared, 10) + "L"
		}
		table.Append([]string{
			r.File,
			strconv.Itoa(r.Line),
			r.Class,
			strconv.FormatInt(r.Computed, 10) + "L",
			declared,
			string(r.Status),
		})
	}

	counts := scan.Counts(results)
	table.SetFooter([]string{
		fmt.Sprintf("Total Classes %d", len(results)),
		"",
		"",
		fmt.Sprintf("missing %d", counts[scan.StatusMissing]),
		fmt.Sprintf("match %d", counts[scan.StatusMatch]),
		fmt.Sprintf("custom %d", counts[scan.StatusCustom]),
	})

	table.Render()

	return fileutil.EnsureTrailingNewline(tableBuffer.String())
}
