package oracle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/persist"
)

// filePerm is the mode of oracle files created by ToFile.
const filePerm = 0o644

// Points is a point-cloud dominance oracle: p is a member when it dominates
// (is componentwise >= to) at least one stored point. Stored points are the
// samples of a Pareto front; Y↑ is their upward closure.
//
// Text files hold one point per line written as "(x1, x2, ..., xn)"; blank
// lines and lines starting with '#' are ignored. Binary files hold a
// sequence of gob frames, each a batch of points, so that appending is cheap.
type Points struct {
	mu     sync.RWMutex
	dim    int
	names  []string
	points []geom.Point
}

// NewPoints creates an oracle of dimension dim seeded with points.
// It returns ErrDimensionMismatch when a point has another dimension.
func NewPoints(dim int, points ...geom.Point) (*Points, error) {
	o := &Points{dim: dim}

	err := o.Add(points...)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// LoadPoints reads a point oracle from path. The dimension is taken from the
// first point in the file.
func LoadPoints(path string, humanReadable bool) (*Points, error) {
	o := &Points{}

	err := o.FromFile(path, humanReadable)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// WithNames sets the axis labels and returns o.
func (o *Points) WithNames(names ...string) *Points {
	o.mu.Lock()
	o.names = names
	o.mu.Unlock()

	return o
}

// Add appends points to the cloud.
func (o *Points) Add(points ...geom.Point) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range points {
		if o.dim == 0 {
			o.dim = p.Dim()
		}

		if p.Dim() != o.dim {
			return fmt.Errorf("%w: point %s in a %d-dimensional oracle", ErrDimensionMismatch, p, o.dim)
		}

		o.points = append(o.points, p.Clone())
	}

	return nil
}

// Points returns a copy of the stored points.
func (o *Points) Points() []geom.Point {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]geom.Point, len(o.points))
	for i, p := range o.points {
		out[i] = p.Clone()
	}

	return out
}

// Member implements Oracle.
func (o *Points) Member(_ context.Context, p geom.Point) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if p.Dim() != o.dim {
		return false, fmt.Errorf("%w: query %s in a %d-dimensional oracle", ErrDimensionMismatch, p, o.dim)
	}

	for _, q := range o.points {
		if q.LessEq(p) {
			return true, nil
		}
	}

	return false, nil
}

// Dim implements Oracle.
func (o *Points) Dim() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.dim
}

// VarNames implements Named.
func (o *Points) VarNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.names
}

// FromFile implements Persistent. Points read from the file are added to the
// ones already stored.
func (o *Points) FromFile(path string, humanReadable bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open oracle file: %w", err)
	}
	defer file.Close()

	var points []geom.Point

	if humanReadable {
		points, err = parsePoints(file)
	} else {
		points, err = readPointFrames(bufio.NewReader(file))
	}

	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return o.Add(points...)
}

// ToFile implements Persistent. Without appendMode the file is replaced
// atomically.
func (o *Points) ToFile(path string, appendMode, humanReadable bool) error {
	points := o.Points()

	write := func(w io.Writer) error {
		if humanReadable {
			return writePoints(w, points)
		}

		raw := make([][]float64, len(points))
		for i, p := range points {
			raw[i] = p
		}

		return persist.WriteFrame(w, persist.NewGobCodec(), raw)
	}

	if !appendMode {
		return persist.WriteFileAtomic(path, write)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open oracle file: %w", err)
	}

	err = write(file)
	if err != nil {
		file.Close()

		return err
	}

	return file.Close()
}

// ParsePoint parses "(x1, ..., xn)". The parentheses are optional.
func ParsePoint(s string) (geom.Point, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	fields := strings.Split(s, ",")
	p := make(geom.Point, 0, len(fields))

	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrParse, s, err)
		}

		p = append(p, v)
	}

	return p, nil
}

func parsePoints(r io.Reader) ([]geom.Point, error) {
	var points []geom.Point

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		p, err := ParsePoint(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		points = append(points, p)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return points, nil
}

func writePoints(w io.Writer, points []geom.Point) error {
	for _, p := range points {
		_, err := fmt.Fprintln(w, p.String())
		if err != nil {
			return fmt.Errorf("write point: %w", err)
		}
	}

	return nil
}

func readPointFrames(r *bufio.Reader) ([]geom.Point, error) {
	var points []geom.Point

	codec := persist.NewGobCodec()

	for {
		var batch [][]float64

		err := persist.ReadFrame(r, codec, &batch)
		if errors.Is(err, io.EOF) {
			return points, nil
		}

		if err != nil {
			return nil, err
		}

		for _, raw := range batch {
			points = append(points, geom.Point(raw))
		}
	}
}
