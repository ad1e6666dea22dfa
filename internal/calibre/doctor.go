// file: internal/calibre/doctor.go
// version: 1.0.0
// guid: c259ef35-b961-455f-90f8-bc719434c7bf

package calibre

import (
	"os/exec"
	"path/filepath"
)

// BinaryStatus reports whether one Calibre executable is reachable.
type BinaryStatus struct {
	Binary string `json:"binary"`
	Found  bool   `json:"found"`
	Path   string `json:"path,omitempty"`
}

// DoctorReport summarizes the health of the Calibre installation.
type DoctorReport struct {
	AllFound       bool           `json:"all_found"`
	CalibreVersion string         `json:"calibre_version,omitempty"`
	Binaries       []BinaryStatus `json:"binaries"`
}

// Doctor probes every Calibre executable this service shells out to, using
// the same BinDir-or-PATH resolution the runner uses. When the main calibre
// binary resolves, the report also carries its version string.
func (t *Tools) Doctor() DoctorReport {
	report := DoctorReport{AllFound: true}

	for _, binary := range Binaries() {
		status := BinaryStatus{Binary: binary}
		if path, err := t.resolveBinary(binary); err == nil {
			status.Found = true
			status.Path = path
		} else {
			report.AllFound = false
		}
		report.Binaries = append(report.Binaries, status)
	}

	if report.AllFound || binaryFound(report.Binaries, BinCalibre) {
		if info, err := t.Version(); err == nil {
			report.CalibreVersion = info.Version
		}
	}

	return report
}

func (t *Tools) resolveBinary(name string) (string, error) {
	if t.binDir != "" {
		return exec.LookPath(filepath.Join(t.binDir, name))
	}
	return exec.LookPath(name)
}

func binaryFound(statuses []BinaryStatus, binary string) bool {
	for _, s := range statuses {
		if s.Binary == binary {
			return s.Found
		}
	}
	return false
}
