// Package arch classifies the CPU architecture of a game executable by
// reading its PE, Mach-O or ELF header. The result only picks which loader
// download to fetch, so detection never fails: anything unreadable or
// unrecognized is reported as X64, which is also what ARM64 hosts get since
// no native ARM64 loader build exists.
package arch

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/rs/zerolog"
)

// Architecture is the download variant a binary calls for
type Architecture string

const (
	X86 Architecture = "x86"
	X64 Architecture = "x64"
)

// Default is returned whenever a binary cannot be classified
const Default = X64

const (
	peOffsetPointer = 60
	elfMachineAt    = 18
	elfDataAt       = 5
	machoFatMagic   = 0xcafebabe
)

// Detect classifies the binary at path. It never fails.
func Detect(path string) Architecture {
	return detect(osSource{}, path)
}

// DetectFS classifies a binary read through the filesystem abstraction
func DetectFS(fsys types.FS, path string) Architecture {
	return detect(fsSource{fs: fsys}, path)
}

// source opens a binary for random access reads
type source interface {
	open(path string) (io.ReaderAt, func(), error)
}

type osSource struct{}

func (osSource) open(path string) (io.ReaderAt, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

type fsSource struct {
	fs types.FS
}

func (s fsSource) open(path string) (io.ReaderAt, func(), error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return bytes.NewReader(data), func() {}, nil
}

type binaryKind int

const (
	peKind binaryKind = iota
	machoKind
	elfKind
)

func detect(src source, path string) Architecture {
	logger := logging.GetLogger("arch").With().Str("path", path).Logger()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".app":
		bundle := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		executable := filepath.Join(path, "Contents", "MacOS", bundle)
		logger.Debug().Str("executable", executable).Msg("Resolved app bundle executable")
		return classify(src, executable, logger, machoKind)
	case ".exe", ".dll":
		return classify(src, path, logger, peKind)
	case ".dylib":
		return classify(src, path, logger, machoKind)
	case "", ".so", ".x86_64", ".x86":
		// Bare executables on macOS carry no extension either
		return classify(src, path, logger, elfKind, machoKind)
	default:
		logger.Debug().Str("ext", ext).Msg("Unrecognized executable extension, using default architecture")
		return Default
	}
}

func classify(src source, path string, logger zerolog.Logger, kinds ...binaryKind) Architecture {
	r, closeFn, err := src.open(path)
	if err != nil {
		logger.Debug().Err(err).Msg("Cannot open binary, using default architecture")
		return Default
	}
	defer closeFn()

	for _, kind := range kinds {
		var (
			arch Architecture
			ok   bool
		)
		switch kind {
		case peKind:
			arch, ok = readPE(r)
		case machoKind:
			arch, ok = readMachO(r)
		case elfKind:
			arch, ok = readELF(r)
		}
		if ok {
			logger.Debug().Str("arch", string(arch)).Msg("Detected architecture")
			return arch
		}
	}

	logger.Debug().Msg("Unrecognized binary header, using default architecture")
	return Default
}

func readAt(r io.ReaderAt, off int64, n int) ([]byte, bool) {
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, off); err != nil {
		return nil, false
	}
	return buf, true
}

// readPE follows the MZ stub to the PE signature and reads the machine field
func readPE(r io.ReaderAt) (Architecture, bool) {
	mz, ok := readAt(r, 0, 2)
	if !ok || mz[0] != 'M' || mz[1] != 'Z' {
		return Default, false
	}

	ptr, ok := readAt(r, peOffsetPointer, 4)
	if !ok {
		return Default, false
	}
	peOffset := int64(binary.LittleEndian.Uint32(ptr))

	header, ok := readAt(r, peOffset, 6)
	if !ok || !bytes.Equal(header[:4], []byte{'P', 'E', 0, 0}) {
		return Default, false
	}

	switch binary.LittleEndian.Uint16(header[4:6]) {
	case pe.IMAGE_FILE_MACHINE_I386:
		return X86, true
	case pe.IMAGE_FILE_MACHINE_AMD64, pe.IMAGE_FILE_MACHINE_ARM64:
		return X64, true
	default:
		return Default, false
	}
}

// readMachO checks the magic and reads the CPU type that follows it
func readMachO(r io.ReaderAt) (Architecture, bool) {
	header, ok := readAt(r, 0, 8)
	if !ok {
		return Default, false
	}

	var order binary.ByteOrder
	switch {
	case isMachOMagic(binary.LittleEndian.Uint32(header[:4])):
		order = binary.LittleEndian
	case isMachOMagic(binary.BigEndian.Uint32(header[:4])):
		order = binary.BigEndian
	case binary.BigEndian.Uint32(header[:4]) == machoFatMagic:
		// Universal binaries always carry an x86_64 or arm64 slice
		return X64, true
	default:
		return Default, false
	}

	switch macho.Cpu(order.Uint32(header[4:8])) {
	case macho.Cpu386:
		return X86, true
	case macho.CpuAmd64, macho.CpuArm64:
		return X64, true
	default:
		return Default, false
	}
}

func isMachOMagic(m uint32) bool {
	return m == macho.Magic64 || m == macho.Magic32
}

// readELF checks the magic and reads e_machine in the file's byte order
func readELF(r io.ReaderAt) (Architecture, bool) {
	ident, ok := readAt(r, 0, elfMachineAt+2)
	if !ok || !bytes.Equal(ident[:4], []byte(elf.ELFMAG)) {
		return Default, false
	}

	var order binary.ByteOrder = binary.LittleEndian
	if elf.Data(ident[elfDataAt]) == elf.ELFDATA2MSB {
		order = binary.BigEndian
	}

	switch elf.Machine(order.Uint16(ident[elfMachineAt:])) {
	case elf.EM_386:
		return X86, true
	case elf.EM_X86_64, elf.EM_AARCH64:
		return X64, true
	default:
		return Default, false
	}
}
