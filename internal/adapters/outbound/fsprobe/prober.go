package fsprobe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/podcheck/podcheck/internal/domain"
)

// Prober implements domain.ConfigProber with os.Stat.
type Prober struct {
	stat func(string) (fs.FileInfo, error)
}

func New() *Prober {
	return &Prober{stat: os.Stat}
}

// Probe stats path. A missing file yields Exists=false and a nil error; any
// other stat failure is returned.
func (p *Prober) Probe(location, path, requiredMode string) (domain.ConfigProbe, error) {
	probe := domain.ConfigProbe{Location: location, Path: path}

	info, err := p.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return probe, nil
		}
		return probe, fmt.Errorf("stat %s: %w", path, err)
	}

	probe.Exists = true
	probe.Permissions = fmt.Sprintf("%03o", info.Mode().Perm())
	probe.PermissionsOK = probe.Permissions == requiredMode
	probe.Modified = info.ModTime()
	probe.Size = info.Size()
	probe.HasContent = info.Size() > 0
	return probe, nil
}
