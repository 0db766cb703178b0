package resultset

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/persist"
)

// Bundle member names.
const (
	memberUp     = "up"
	memberLow    = "low"
	memberBorder = "border"
	memberSpace  = "space"
)

// MethodLZ4 is the zip compression method id used for LZ4-compressed members.
const MethodLZ4 uint16 = 0x4c34

// Compression selects how bundle members are stored.
type Compression int

const (
	// Deflate stores members with the standard zip deflate method.
	Deflate Compression = iota
	// LZ4 stores members as LZ4 frames under MethodLZ4.
	LZ4
	// Store keeps members uncompressed.
	Store
)

// ParseCompression maps "deflate", "lz4" and "store" to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "deflate":
		return Deflate, nil
	case "lz4":
		return LZ4, nil
	case "store", "none":
		return Store, nil
	default:
		return Deflate, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// boxList is the gob form of a box family. The wrapper keeps empty families
// decodable.
type boxList struct {
	Boxes []*geom.Rectangle
}

// Bundle errors.
var (
	ErrUnknownCompression = errors.New("unknown compression")
	ErrMissingMember      = errors.New("bundle member missing")
)

// Save writes rs to path as a zip bundle holding the members up, low,
// border and space, each a gob blob. The file is replaced atomically.
func (rs *ResultSet) Save(path string, compression Compression) error {
	method, err := compression.method()
	if err != nil {
		return err
	}

	members := []struct {
		name  string
		value any
	}{
		{memberUp, boxList{Boxes: rs.Yup()}},
		{memberLow, boxList{Boxes: rs.Ylow()}},
		{memberBorder, boxList{Boxes: rs.Border()}},
		{memberSpace, rs.Space()},
	}

	return persist.WriteFileAtomic(path, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		zw.RegisterCompressor(MethodLZ4, func(out io.Writer) (io.WriteCloser, error) {
			return lz4.NewWriter(out), nil
		})

		codec := persist.NewGobCodec()

		for _, m := range members {
			entry, err := zw.CreateHeader(&zip.FileHeader{Name: m.name, Method: method})
			if err != nil {
				return fmt.Errorf("create member %s: %w", m.name, err)
			}

			err = codec.Encode(entry, m.value)
			if err != nil {
				return fmt.Errorf("encode member %s: %w", m.name, err)
			}
		}

		err := zw.Close()
		if err != nil {
			return fmt.Errorf("close bundle: %w", err)
		}

		return nil
	})
}

// Load reads a bundle written by Save. Members may appear in any order;
// unknown members are ignored.
func Load(path string) (*ResultSet, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer zr.Close()

	zr.RegisterDecompressor(MethodLZ4, func(in io.Reader) io.ReadCloser {
		return io.NopCloser(lz4.NewReader(in))
	})

	var (
		yup, ylow, border boxList
		space             geom.Rectangle
		seen              = map[string]bool{}
	)

	codec := persist.NewGobCodec()

	for _, f := range zr.File {
		var target any

		switch f.Name {
		case memberUp:
			target = &yup
		case memberLow:
			target = &ylow
		case memberBorder:
			target = &border
		case memberSpace:
			target = &space
		default:
			continue
		}

		err = decodeMember(f, codec, target)
		if err != nil {
			return nil, err
		}

		seen[f.Name] = true
	}

	for _, name := range []string{memberUp, memberLow, memberBorder, memberSpace} {
		if !seen[name] {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingMember, name, path)
		}
	}

	return New(space.Clone(), yup.Boxes, ylow.Boxes, border.Boxes), nil
}

func decodeMember(f *zip.File, codec persist.Codec, target any) error {
	r, err := f.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer r.Close()

	err = codec.Decode(r, target)
	if err != nil {
		return fmt.Errorf("decode member %s: %w", f.Name, err)
	}

	return nil
}

func (c Compression) method() (uint16, error) {
	switch c {
	case Deflate:
		return zip.Deflate, nil
	case LZ4:
		return MethodLZ4, nil
	case Store:
		return zip.Store, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownCompression, int(c))
	}
}
