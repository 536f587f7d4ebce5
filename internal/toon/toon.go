// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/partials/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a run Report into TOON format. Paths under rep.Root are
// shown relative to it.
func Encode(rep *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(rep.Root)))

	var failed int
	var docRows [][]string
	for i := range rep.Outcomes {
		o := &rep.Outcomes[i]
		status, msg := "ok", ""
		switch {
		case o.Err != nil:
			status, msg = "failed", o.Err.Error()
			failed++
		case o.File.IsNull():
			status = "skipped"
		}
		docRows = append(docRows, []string{
			relPath(rep.Root, o.File.Path),
			status,
			strconv.Itoa(o.Injected),
			msg,
		})
	}
	parts = append(parts, fmt.Sprintf("failed: %d", failed))
	parts = append(parts, formatTabular("documents", []string{"path", "status", "partials", "error"}, docRows))

	var partialRows [][]string
	for i := range rep.Partials {
		p := &rep.Partials[i]
		partialRows = append(partialRows, []string{
			relPath(rep.Root, p.Path),
			strconv.Itoa(p.Uses),
			fmt.Sprintf("%.4f", p.Rank),
		})
	}
	parts = append(parts, formatTabular("partials", []string{"path", "uses", "rank"}, partialRows))

	var depRows [][]string
	for i := range rep.Dependencies {
		d := &rep.Dependencies[i]
		depRows = append(depRows, []string{
			relPath(rep.Root, d.Source),
			relPath(rep.Root, d.Target),
		})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target"}, depRows))

	return strings.Join(parts, "\n")
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

// encodeValue renders one table cell, quoting it when a bare value would
// read as a keyword, break the row or lose whitespace. Numbers stay bare.
func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	case looksNumeric.MatchString(value):
		return value
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quote(value string) string {
	return `"` + escaper.Replace(value) + `"`
}
