package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Report summarizes a set of derivations.
type Report struct {
	Results   []Result `json:"results"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
}

var writers = map[string]func(io.Writer, Report) error{
	"text":  WriteText,
	"json":  WriteJSON,
	"latex": WriteLaTeX,
}

// Formats returns all output format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for k := range writers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Write renders r in the named format.
func Write(w io.Writer, format string, r Report) error {
	fn, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown format: %s (available: %v)", format, Formats())
	}
	return fn(w, r)
}

// WriteResultText writes one result in human-readable format.
func WriteResultText(w io.Writer, r Result) {
	if r.OK() {
		fmt.Fprintf(w, "d/d%s %s = %s\n", r.Variable, r.Input, r.Output)
		return
	}
	fmt.Fprintf(w, "d/d%s %s: no (%s)\n", r.Variable, r.Input, r.Error)
}

// WriteText writes every result followed by a one-line summary.
func WriteText(w io.Writer, r Report) error {
	for _, res := range r.Results {
		WriteResultText(w, res)
	}
	if len(r.Results) > 1 {
		fmt.Fprintf(w, "--- %d derived, %d failed ---\n", r.Succeeded, r.Failed)
	}
	return nil
}

// WriteJSON writes the report as JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"_", `\_`,
	"&", `\&`,
	"%", `\%`,
	"#", `\#`,
	"$", `\$`,
	"{", `\{`,
	"}", `\}`,
	"^", `\^{}`,
	"~", `\~{}`,
)

// latexEscape escapes underscores and other special chars for LaTeX text mode.
func latexEscape(s string) string {
	return latexEscaper.Replace(s)
}

// WriteLaTeX writes a compilable LaTeX document with one display equation
// per successful derivation.
func WriteLaTeX(w io.Writer, r Report) error {
	fmt.Fprintln(w, `\documentclass{article}`)
	fmt.Fprintln(w, `\usepackage{amsmath}`)
	fmt.Fprintln(w, `\begin{document}`)
	for i, res := range r.Results {
		fmt.Fprintf(w, "\\subsection*{\\#%d: \\texttt{%s}}\n", i+1, latexEscape(res.Input))
		if !res.OK() {
			fmt.Fprintf(w, "\\noindent No derivative: \\texttt{%s}\n\n", latexEscape(res.Error))
			continue
		}
		fmt.Fprintln(w, `\[`)
		fmt.Fprintf(w, "  \\frac{d}{d%s} = %s\n", res.Variable, res.LaTeX)
		fmt.Fprintln(w, `\]`)
	}
	_, err := fmt.Fprintln(w, `\end{document}`)
	return err
}
