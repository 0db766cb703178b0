package persist

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// tempPattern names the scratch files created next to the destination.
const tempPattern = ".paretolearn-*.tmp"

// maxFrameSize bounds a single framed blob.
const maxFrameSize = 1 << 30

// ErrFrameTooLarge is returned when a frame header announces an oversized blob.
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFileAtomic writes the output of write to path. The data goes to a
// temporary file in the same directory, which is synced and renamed over path
// only when write succeeds. On failure path is left untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buffered := bufio.NewWriter(tmp)

	err = write(buffered)
	if err != nil {
		return err
	}

	err = buffered.Flush()
	if err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}

	return nil
}

// Save encodes state with codec and writes it atomically to path.
func Save(path string, codec Codec, state any) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return codec.Encode(w, state)
	})
}

// Load decodes the file at path into state, which must be a pointer.
func Load(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(bufio.NewReader(file), state)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// WriteFrame encodes state with codec and writes it as one length-prefixed
// frame. Frames can be appended to an existing stream and read back one by
// one with ReadFrame, which a single gob stream does not allow.
func WriteFrame(w io.Writer, codec Codec, state any) error {
	var buf bytes.Buffer

	err := codec.Encode(&buf, state)
	if err != nil {
		return err
	}

	var header [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(header[:], uint64(buf.Len()))

	_, err = w.Write(header[:n])
	if err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}

	_, err = w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// ReadFrame decodes the next frame from r into state. It returns io.EOF when
// the stream ends cleanly before a frame header.
func ReadFrame(r *bufio.Reader, codec Codec, state any) error {
	size, err := binary.ReadUvarint(r)
	if errors.Is(err, io.EOF) {
		return io.EOF
	}

	if err != nil {
		return fmt.Errorf("read frame header: %w", err)
	}

	if size > maxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	blob := make([]byte, size)

	_, err = io.ReadFull(r, blob)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	return codec.Decode(bytes.NewReader(blob), state)
}
