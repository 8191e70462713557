package loader

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lophius/drover/models"
)

var UnknownMagic = errors.New("could not identify file magic")

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

func getMagic(r io.ReaderAt) []byte {
	var magic [4]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return nil
	}
	return magic[:]
}

func MatchElf(r io.ReaderAt) bool {
	return bytes.Equal(getMagic(r), elfMagic)
}

// Load sniffs the container format and hands off to its loader.
func Load(r io.ReaderAt) (models.Loader, error) {
	if MatchElf(r) {
		return NewElfLoader(r)
	}
	return nil, errors.WithStack(UnknownMagic)
}

func LoadFile(path string) (models.Loader, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Load(bytes.NewReader(p))
}
