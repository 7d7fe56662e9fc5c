package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Raw dumps store linear radiance before gamma and quantization:
// the magic "RGBF", uint32 width and height, then float32 RGB triples,
// all little endian, row-major with the top row first.
var rawMagic = [4]byte{'R', 'G', 'B', 'F'}

const rawHeaderSize = 12

// maxRawPixels bounds the allocation made for a decoded header
const maxRawPixels = 1 << 28

// Codec selects the compression used for raw dumps
type Codec string

const (
	CodecNone   Codec = "none"
	CodecZstd   Codec = "zstd"
	CodecSnappy Codec = "snappy"
)

// ParseCodec validates a codec name
func ParseCodec(name string) (Codec, error) {
	switch Codec(strings.ToLower(name)) {
	case CodecNone, "":
		return CodecNone, nil
	case CodecZstd:
		return CodecZstd, nil
	case CodecSnappy:
		return CodecSnappy, nil
	default:
		return "", fmt.Errorf("unknown raw codec %q (want none, zstd or snappy)", name)
	}
}

// Extension returns the file extension of a raw dump using this codec
func (c Codec) Extension() string {
	switch c {
	case CodecZstd:
		return ".rgbf.zst"
	case CodecSnappy:
		return ".rgbf.sz"
	default:
		return ".rgbf"
	}
}

// CodecFromPath infers the codec from a raw dump file name
func CodecFromPath(path string) Codec {
	switch {
	case strings.HasSuffix(path, CodecZstd.Extension()):
		return CodecZstd
	case strings.HasSuffix(path, CodecSnappy.Extension()):
		return CodecSnappy
	default:
		return CodecNone
	}
}

// WriteRaw writes the framebuffer as a raw dump compressed with codec
func WriteRaw(w io.Writer, fb *renderer.Framebuffer, codec Codec) error {
	switch codec {
	case CodecZstd:
		encoder, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd encoder: %w", err)
		}
		if err := encodeRaw(encoder, fb); err != nil {
			encoder.Close()
			return err
		}
		return encoder.Close()
	case CodecSnappy:
		stream := snappy.NewBufferedWriter(w)
		if err := encodeRaw(stream, fb); err != nil {
			stream.Close()
			return err
		}
		return stream.Close()
	case CodecNone, "":
		bw := bufio.NewWriter(w)
		if err := encodeRaw(bw, fb); err != nil {
			return err
		}
		return bw.Flush()
	default:
		return fmt.Errorf("unknown raw codec %q", codec)
	}
}

// ReadRaw decodes a raw dump compressed with codec
func ReadRaw(r io.Reader, codec Codec) (*renderer.Framebuffer, error) {
	switch codec {
	case CodecZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer decoder.Close()
		return decodeRaw(decoder)
	case CodecSnappy:
		return decodeRaw(snappy.NewReader(r))
	case CodecNone, "":
		return decodeRaw(bufio.NewReader(r))
	default:
		return nil, fmt.Errorf("unknown raw codec %q", codec)
	}
}

// SaveRaw writes a raw dump to path, choosing the codec's extension if path has none
func SaveRaw(path string, fb *renderer.Framebuffer, codec Codec) (string, error) {
	if !strings.HasSuffix(path, codec.Extension()) {
		path += codec.Extension()
	}
	return path, saveFile(path, func(w io.Writer) error {
		return WriteRaw(w, fb, codec)
	})
}

// LoadRaw reads a raw dump, inferring the codec from the file name
func LoadRaw(path string) (*renderer.Framebuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening raw dump: %w", err)
	}
	defer file.Close()

	fb, err := ReadRaw(file, CodecFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fb, nil
}

func encodeRaw(w io.Writer, fb *renderer.Framebuffer) error {
	header := make([]byte, rawHeaderSize)
	copy(header, rawMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(fb.Width))
	binary.LittleEndian.PutUint32(header[8:12], uint32(fb.Height))
	if _, err := w.Write(header); err != nil {
		return err
	}

	row := make([]byte, fb.Width*12)
	for y := 0; y < fb.Height; y++ {
		for x, pixel := range fb.Row(y) {
			offset := x * 12
			binary.LittleEndian.PutUint32(row[offset:], math.Float32bits(float32(pixel.X)))
			binary.LittleEndian.PutUint32(row[offset+4:], math.Float32bits(float32(pixel.Y)))
			binary.LittleEndian.PutUint32(row[offset+8:], math.Float32bits(float32(pixel.Z)))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func decodeRaw(r io.Reader) (*renderer.Framebuffer, error) {
	header := make([]byte, rawHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("raw header: %w", err)
	}
	if [4]byte(header[:4]) != rawMagic {
		return nil, fmt.Errorf("not a raw framebuffer dump")
	}
	width := int(binary.LittleEndian.Uint32(header[4:8]))
	height := int(binary.LittleEndian.Uint32(header[8:12]))
	if width <= 0 || height <= 0 || width > maxRawPixels/height {
		return nil, fmt.Errorf("invalid raw dimensions %dx%d", width, height)
	}

	fb := renderer.NewFramebuffer(width, height)
	row := make([]byte, width*12)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("raw row %d: %w", y, err)
		}
		for x := 0; x < width; x++ {
			offset := x * 12
			fb.Set(x, y, core.NewVec3(
				float64(math.Float32frombits(binary.LittleEndian.Uint32(row[offset:]))),
				float64(math.Float32frombits(binary.LittleEndian.Uint32(row[offset+4:]))),
				float64(math.Float32frombits(binary.LittleEndian.Uint32(row[offset+8:]))),
			))
		}
	}
	return fb, nil
}
