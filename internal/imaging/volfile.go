package imaging

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Native volume container: little-endian, fixed header followed by the voxel
// payload. Images store float64 voxels, masks int32 labels.
//
//	magic   [4]byte  "VVOL"
//	version uint16   1
//	kind    uint8    0 = image, 1 = mask
//	_       uint8    reserved
//	nx, ny, nz uint32
//	spacing [3]float64
//	payload nx*ny*nz voxels

var (
	volMagic = [4]byte{'V', 'V', 'O', 'L'}

	// ErrBadVolumeFile is returned for malformed or truncated native files.
	ErrBadVolumeFile = errors.New("imaging: bad volume file")
)

const (
	volVersion   = 1
	volKindImage = 0
	volKindMask  = 1

	// maxVolumeVoxels bounds allocations driven by untrusted headers.
	maxVolumeVoxels = 1 << 30
)

type volHeader struct {
	Magic   [4]byte
	Version uint16
	Kind    uint8
	_       uint8
	NX      uint32
	NY      uint32
	NZ      uint32
	Spacing [3]float64
}

func readHeader(r io.Reader, wantKind uint8) (volHeader, error) {
	var h volHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("%w: %v", ErrBadVolumeFile, err)
	}
	if h.Magic != volMagic {
		return h, fmt.Errorf("%w: bad magic", ErrBadVolumeFile)
	}
	if h.Version != volVersion {
		return h, fmt.Errorf("%w: unsupported version %d", ErrBadVolumeFile, h.Version)
	}
	if h.Kind != wantKind {
		return h, fmt.Errorf("%w: wrong payload kind %d", ErrBadVolumeFile, h.Kind)
	}
	if h.NX == 0 || h.NY == 0 || h.NZ == 0 {
		return h, fmt.Errorf("%w: zero dimension", ErrBadVolumeFile)
	}
	total := uint64(h.NX) * uint64(h.NY) * uint64(h.NZ)
	if total > maxVolumeVoxels {
		return h, fmt.Errorf("%w: volume too large (%d voxels)", ErrBadVolumeFile, total)
	}
	return h, nil
}

// ReadVolume decodes an image volume from r.
func ReadVolume(r io.Reader) (*Volume, error) {
	h, err := readHeader(r, volKindImage)
	if err != nil {
		return nil, err
	}
	vol, err := NewVolume(int(h.NX), int(h.NY), int(h.NZ))
	if err != nil {
		return nil, err
	}
	vol.Spacing = h.Spacing
	if err := binary.Read(r, binary.LittleEndian, vol.Data); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrBadVolumeFile, err)
	}
	return vol, nil
}

// WriteVolume encodes an image volume to w.
func WriteVolume(w io.Writer, v *Volume) error {
	h := volHeader{
		Magic:   volMagic,
		Version: volVersion,
		Kind:    volKindImage,
		NX:      uint32(v.NX),
		NY:      uint32(v.NY),
		NZ:      uint32(v.NZ),
		Spacing: v.Spacing,
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write volume header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, v.Data); err != nil {
		return fmt.Errorf("write volume payload: %w", err)
	}
	return nil
}

// ReadMask decodes a label mask from r.
func ReadMask(r io.Reader) (*Mask, error) {
	h, err := readHeader(r, volKindMask)
	if err != nil {
		return nil, err
	}
	mask, err := NewMask(int(h.NX), int(h.NY), int(h.NZ))
	if err != nil {
		return nil, err
	}
	mask.Spacing = h.Spacing
	if err := binary.Read(r, binary.LittleEndian, mask.Labels); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrBadVolumeFile, err)
	}
	return mask, nil
}

// WriteMask encodes a label mask to w.
func WriteMask(w io.Writer, m *Mask) error {
	h := volHeader{
		Magic:   volMagic,
		Version: volVersion,
		Kind:    volKindMask,
		NX:      uint32(m.NX),
		NY:      uint32(m.NY),
		NZ:      uint32(m.NZ),
		Spacing: m.Spacing,
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write mask header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Labels); err != nil {
		return fmt.Errorf("write mask payload: %w", err)
	}
	return nil
}

// ReadVolumeFile decodes an image volume from a native-format file.
func ReadVolumeFile(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open volume %s: %w", path, err)
	}
	defer f.Close()
	return ReadVolume(bufio.NewReader(f))
}

// ReadMaskFile decodes a label mask from a native-format file.
func ReadMaskFile(path string) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mask %s: %w", path, err)
	}
	defer f.Close()
	return ReadMask(bufio.NewReader(f))
}

// WriteVolumeFile encodes an image volume to a native-format file.
func WriteVolumeFile(path string, v *Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create volume %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := WriteVolume(w, v); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteMaskFile encodes a label mask to a native-format file.
func WriteMaskFile(path string, m *Mask) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mask %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := WriteMask(w, m); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
