package region

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arloliu/mcnbt/errs"
)

// ExternalFileName returns the name of the .mcc file holding the chunk at
// absolute chunk coordinates (chunkX, chunkZ).
func ExternalFileName(chunkX, chunkZ int) string {
	return fmt.Sprintf("c.%d.%d.mcc", chunkX, chunkZ)
}

// externalPath returns the .mcc path for slot, next to the region file.
func (r *Region) externalPath(slot int) (string, error) {
	if !r.cfg.hasCoords {
		return "", fmt.Errorf("%w: region coordinates unknown for %s", errs.ErrExternalChunk, filepath.Base(r.path))
	}

	x, z := SlotCoords(slot)
	name := ExternalFileName(r.cfg.regionX*Width+x, r.cfg.regionZ*Width+z)

	return filepath.Join(filepath.Dir(r.path), name), nil
}

func (r *Region) readExternal(slot int) ([]byte, error) {
	if p, ok := r.pending[slot]; ok && p.external != nil {
		return p.external, nil
	}

	path, err := r.externalPath(slot)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrExternalChunk, err)
	}

	return data, nil
}

// syncExternal writes or removes the .mcc file of a staged chunk.
func (r *Region) syncExternal(slot int, p *pendingChunk) error {
	if p.external == nil && !p.dropExternal {
		return nil
	}

	path, err := r.externalPath(slot)
	if err != nil {
		return err
	}

	if p.external == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove external chunk: %w", err)
		}

		return nil
	}

	// Write beside the target and rename so readers never see a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, p.external, 0o644); err != nil {
		return fmt.Errorf("write external chunk: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write external chunk: %w", err)
	}

	return nil
}
