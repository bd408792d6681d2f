package application

import "io/fs"

// SetWriteFile replaces the scratch file writer used by the artifact check.
func (s *TrackerService) SetWriteFile(fn func(name string, data []byte, perm fs.FileMode) error) {
	s.writeFile = fn
}
