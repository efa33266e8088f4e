// Package series holds the time-sampled outputs of a run and their text
// encoding: one "<time> <value>" line per sample.
package series

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Sample struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

type Series []Sample

func (s Series) Times() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.T
	}
	return out
}

func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.V
	}
	return out
}

// Decimate keeps at most n evenly spaced samples, always including the
// first one. It is meant for plotting, never for export.
func (s Series) Decimate(n int) Series {
	if n <= 0 || len(s) <= n {
		return s
	}
	out := make(Series, 0, n)
	stride := float64(len(s)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, s[int(float64(i)*stride)])
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteText writes s as newline-separated "<time> <value>" lines. Values
// use the shortest representation that parses back to the same float.
func WriteText(w io.Writer, s Series) error {
	bw := bufio.NewWriter(w)
	for i, p := range s {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		bw.WriteString(formatFloat(p.T))
		bw.WriteByte(' ')
		bw.WriteString(formatFloat(p.V))
	}
	return bw.Flush()
}

// ReadText parses the format written by WriteText. Blank lines are skipped.
func ReadText(r io.Reader) (Series, error) {
	sc := bufio.NewScanner(r)
	out := make(Series, 0, 1024)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 fields, got %d", lineNo, len(fields))
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", lineNo, err)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", lineNo, err)
		}
		out = append(out, Sample{T: t, V: v})
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func WriteFile(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteText(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func ReadFile(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadText(f)
}
