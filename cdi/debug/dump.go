package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/valerio/go-cdi/cdi/video"
)

// PlaneReader is the read access the debug tools need to plane memory.
type PlaneReader interface {
	Long(offset uint32) uint32
	Bytes() []byte
}

// DumpPlanes writes the raw contents of both planes to planea.bin and
// planeb.bin in dir.
func DumpPlanes(dir string, a, b PlaneReader) error {
	for name, plane := range map[string]PlaneReader{"planea.bin": a, "planeb.bin": b} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, plane.Bytes(), 0o644); err != nil {
			return errors.Wrapf(err, "dumping %s", name)
		}
	}
	return nil
}

// ListEntry is one decoded display-list command.
type ListEntry struct {
	Address uint32
	Command video.Command
}

func (e ListEntry) String() string {
	return fmt.Sprintf("%06X: %s", e.Address, e.Command)
}

// DisassembleList decodes a command list starting at address until a
// command that stops the list, or max commands. Jumps are not followed.
func DisassembleList(plane PlaneReader, address uint32, max int) []ListEntry {
	var entries []ListEntry
	for i := 0; i < max; i++ {
		cmd := video.Command(plane.Long(address))
		entries = append(entries, ListEntry{Address: address, Command: cmd})
		address += 4

		switch cmd.Op() {
		case video.OpStop, video.OpReloadDCPStop, video.OpReloadVSRStop:
			return entries
		}
	}
	return entries
}

// FormatList renders entries one per line.
func FormatList(entries []ListEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// icaAddress is where the MCD212 starts fetching each channel's ICA.
const icaAddress = 0x400

// DumpDisplayLists writes the disassembled ICA of each plane to
// ica_a.txt and ica_b.txt in dir, at most max commands each.
func DumpDisplayLists(dir string, a, b PlaneReader, max int) error {
	for name, plane := range map[string]PlaneReader{"ica_a.txt": a, "ica_b.txt": b} {
		list := FormatList(DisassembleList(plane, icaAddress, max))
		if err := os.WriteFile(filepath.Join(dir, name), []byte(list), 0o644); err != nil {
			return errors.Wrapf(err, "dumping %s", name)
		}
	}
	return nil
}
