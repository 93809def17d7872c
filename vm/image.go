// This file is part of flip-jump - https://github.com/Mr-Bossman/flip-jump
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// magic identifies a FlipJump binary image: 'F' | ('J' << 8).
const magic uint16 = uint16('F') | uint16('J')<<8

// Version identifies the binary header layout.
type Version uint64

// Supported versions.
const (
	VersionBase   Version = 0 // no flags/reserved fields
	VersionNormal Version = 1 // adds flags + reserved u32
)

// Flags are defined only for VersionNormal and above. No flag bits are
// currently assigned; the field exists for forward compatibility and must be
// zero for VersionBase.
type Flags uint64

// FlagNone is the only flag value currently defined.
const FlagNone Flags = 0

// Segment describes one contiguous, word-addressed region of the image: a
// possibly-empty prefix of concrete Data followed by an implicit zero-filled
// tail of (Length - DataLength) words.
type Segment struct {
	Start      uint64 // segment_start, in words
	Length     uint64 // segment_length, in words
	DataStart  uint64 // index into Image.Data where this segment's words begin
	DataLength uint64 // number of concrete words (DataLength <= Length)
}

func (s Segment) end() uint64 { return s.Start + s.Length }

// Image is the in-memory representation of the binary file format described
// by the FlipJump image layout: a header, a segment table, and a flat array
// of data words shared (via DataStart offsets) by all segments.
type Image struct {
	WordSize WordSize
	Version  Version
	Flags    Flags
	Segments []Segment
	Data     []uint64
}

// NewImage creates an empty image for the given word size, defaulting to the
// VersionNormal layout.
func NewImage(w WordSize) *Image {
	return &Image{WordSize: w, Version: VersionNormal}
}

// Validate checks segment non-overlap and the version/flags relationship
// without touching the data words.
func (img *Image) Validate() error {
	if !img.WordSize.Valid() {
		return errors.Wrapf(ErrFileFormat, "word size %d", img.WordSize)
	}
	if img.Version != VersionBase && img.Version != VersionNormal {
		return errors.Wrapf(ErrFileFormat, "unsupported version %d", img.Version)
	}
	if img.Version == VersionBase && img.Flags != FlagNone {
		return errors.Wrap(ErrFileFormat, "version 0 forbids non-zero flags")
	}
	segs := append([]Segment(nil), img.Segments...)
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	for i := 1; i < len(segs); i++ {
		if segs[i].Start < segs[i-1].end() {
			return errors.Wrapf(ErrSegmentOverlap, "[%d,%d) and [%d,%d)",
				segs[i-1].Start, segs[i-1].end(), segs[i].Start, segs[i].end())
		}
	}
	for _, s := range segs {
		if s.DataLength > s.Length {
			return errors.Wrapf(ErrFileFormat, "segment at %d: data_length %d > segment_length %d", s.Start, s.DataLength, s.Length)
		}
		if s.DataStart+s.DataLength > uint64(len(img.Data)) {
			return errors.Wrapf(ErrFileFormat, "segment at %d: data range exceeds data section", s.Start)
		}
	}
	return nil
}

// WriteTo serializes the image in the on-disk layout: header, extended
// header (version >= 1), segment table, then data words, all little-endian.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	if err := img.Validate(); err != nil {
		return 0, err
	}
	var n int64
	wr := func(v interface{}) error {
		return binary.Write(w, binary.LittleEndian, v)
	}
	if err := wr(magic); err != nil {
		return n, errors.Wrap(err, "write magic")
	}
	n += 2
	if err := wr(uint16(img.WordSize)); err != nil {
		return n, errors.Wrap(err, "write word size")
	}
	n += 2
	if err := wr(uint64(img.Version)); err != nil {
		return n, errors.Wrap(err, "write version")
	}
	n += 8
	if err := wr(uint64(len(img.Segments))); err != nil {
		return n, errors.Wrap(err, "write segment count")
	}
	n += 8
	if img.Version >= VersionNormal {
		if err := wr(uint64(img.Flags)); err != nil {
			return n, errors.Wrap(err, "write flags")
		}
		n += 8
		if err := wr(uint32(0)); err != nil {
			return n, errors.Wrap(err, "write reserved")
		}
		n += 4
	}
	for _, s := range img.Segments {
		for _, v := range [4]uint64{s.Start, s.Length, s.DataStart, s.DataLength} {
			if err := wr(v); err != nil {
				return n, errors.Wrap(err, "write segment table")
			}
			n += 8
		}
	}
	mask := img.WordSize.Mask()
	for _, word := range img.Data {
		if err := writeWord(w, img.WordSize, word&mask); err != nil {
			return n, errors.Wrap(err, "write data word")
		}
		n += int64(img.WordSize) / 8
	}
	return n, nil
}

func writeWord(w io.Writer, size WordSize, v uint64) error {
	switch size {
	case Word8:
		return binary.Write(w, binary.LittleEndian, uint8(v))
	case Word16:
		return binary.Write(w, binary.LittleEndian, uint16(v))
	case Word32:
		return binary.Write(w, binary.LittleEndian, uint32(v))
	default:
		return binary.Write(w, binary.LittleEndian, v)
	}
}

func readWord(r io.Reader, size WordSize) (uint64, error) {
	switch size {
	case Word8:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		return uint64(v), err
	case Word16:
		var v uint16
		err := binary.Read(r, binary.LittleEndian, &v)
		return uint64(v), err
	case Word32:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		return uint64(v), err
	default:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	}
}

// Load parses a binary FlipJump image from r.
func Load(r io.Reader) (*Image, error) {
	var m uint16
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return nil, errors.Wrap(ErrFileFormat, "truncated header: "+errCtx(err))
	}
	if m != magic {
		return nil, errors.Wrapf(ErrFileFormat, "bad magic %#04x", m)
	}
	var wsz uint16
	if err := binary.Read(r, binary.LittleEndian, &wsz); err != nil {
		return nil, errors.Wrap(ErrFileFormat, "truncated header: "+errCtx(err))
	}
	w, err := ParseWordSize(int(wsz))
	if err != nil {
		return nil, errors.Wrap(ErrFileFormat, err.Error())
	}
	var version uint64
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(ErrFileFormat, "truncated header: "+errCtx(err))
	}
	var segCount uint64
	if err := binary.Read(r, binary.LittleEndian, &segCount); err != nil {
		return nil, errors.Wrap(ErrFileFormat, "truncated header: "+errCtx(err))
	}
	img := &Image{WordSize: w, Version: Version(version)}
	if img.Version >= VersionNormal {
		var flags uint64
		if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
			return nil, errors.Wrap(ErrFileFormat, "truncated extended header: "+errCtx(err))
		}
		img.Flags = Flags(flags)
		var reserved uint32
		if err := binary.Read(r, binary.LittleEndian, &reserved); err != nil {
			return nil, errors.Wrap(ErrFileFormat, "truncated extended header: "+errCtx(err))
		}
		if reserved != 0 {
			return nil, errors.Wrap(ErrFileFormat, "reserved field is not zero")
		}
	} else if img.Version != VersionBase {
		return nil, errors.Wrapf(ErrFileFormat, "unsupported version %d", img.Version)
	}
	img.Segments = make([]Segment, segCount)
	var totalData uint64
	for i := range img.Segments {
		var vals [4]uint64
		for j := range vals {
			if err := binary.Read(r, binary.LittleEndian, &vals[j]); err != nil {
				return nil, errors.Wrap(ErrFileFormat, "truncated segment table: "+errCtx(err))
			}
		}
		img.Segments[i] = Segment{Start: vals[0], Length: vals[1], DataStart: vals[2], DataLength: vals[3]}
		if end := img.Segments[i].DataStart + img.Segments[i].DataLength; end > totalData {
			totalData = end
		}
	}
	img.Data = make([]uint64, totalData)
	for i := range img.Data {
		v, err := readWord(r, w)
		if err != nil {
			return nil, errors.Wrap(ErrFileFormat, "truncated data section: "+errCtx(err))
		}
		img.Data[i] = v
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func errCtx(err error) string {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return "unexpected eof"
	}
	return err.Error()
}
