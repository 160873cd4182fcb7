package pagegen

import (
	"encoding/json"
	"sort"

	"github.com/Alia5/pageproc/internal/processing"
)

// Manifest lists the pages seen by one processing pass. It is written as a
// resource named after the processor mode.
type Manifest struct {
	Mode    string          `json:"mode"`
	Package string          `json:"package"`
	Pages   []ManifestEntry `json:"pages"`
}

// ManifestEntry describes a single page.
type ManifestEntry struct {
	QualifiedName string `json:"qualifiedName"`
	Route         string `json:"route,omitempty"`
	File          string `json:"file"`
	Generated     bool   `json:"generated"`
}

func (m *Manifest) add(e ManifestEntry) {
	m.Pages = append(m.Pages, e)
}

func (m *Manifest) encode() ([]byte, error) {
	sort.SliceStable(m.Pages, func(i, j int) bool {
		return m.Pages[i].QualifiedName < m.Pages[j].QualifiedName
	})
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeManifest writes m as <mode manifest file> at the resource root.
func writeManifest(codeGen processing.CodeGenerator, mode Mode, m *Manifest, inputs []*processing.FileRef) error {
	data, err := m.encode()
	if err != nil {
		return err
	}
	name := mode.ManifestFile()
	w, err := codeGen.CreateNewFile(processing.NewDependencies(true, inputs...), "", name[:len(name)-len(".json")], "json")
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
