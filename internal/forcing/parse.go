package forcing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

var fieldNames = [4]string{"tau", "frequency", "phi", "amplitude"}

// Parse reads one term per line: tau, frequency in Hz, phi, amplitude.
// Blank lines and lines starting with '#' are skipped, extra fields are
// ignored. Errors carry the 1-indexed line number.
func Parse(r io.Reader) ([]Term, error) {
	sc := bufio.NewScanner(r)
	terms := make([]Term, 0, 8)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 4 {
			return nil, &dynamo.InvalidParameterError{
				Line:   lineNo,
				Text:   line,
				Reason: fmt.Sprintf("expected 4 fields, got %d", len(parts)),
			}
		}

		var vals [4]float64
		for i := range vals {
			v, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return nil, &dynamo.InvalidParameterError{
					Line:   lineNo,
					Field:  fieldNames[i],
					Text:   parts[i],
					Reason: "not a number",
				}
			}
			vals[i] = v
		}

		term := NewTerm(vals[0], vals[1], vals[2], vals[3])
		if err := term.Validate(); err != nil {
			if perr, ok := err.(*dynamo.InvalidParameterError); ok {
				perr.Line = lineNo
			}
			return nil, err
		}
		terms = append(terms, term)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read parameters: %w", err)
	}
	return terms, nil
}

func ParseFile(path string) ([]Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	terms, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return terms, nil
}

// Format writes terms back in the parameter format, frequency in Hz.
func Format(w io.Writer, terms []Term) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# tau freq_hz phi amplitude")
	for _, t := range terms {
		fmt.Fprintf(bw, "%s %s %s %s\n",
			strconv.FormatFloat(t.Tau, 'g', -1, 64),
			strconv.FormatFloat(t.FrequencyHz(), 'g', -1, 64),
			strconv.FormatFloat(t.Phi, 'g', -1, 64),
			strconv.FormatFloat(t.Amplitude, 'g', -1, 64),
		)
	}
	return bw.Flush()
}
