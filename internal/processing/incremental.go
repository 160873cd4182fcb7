package processing

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// IndexFileName is the name of the incremental index inside an output directory.
const IndexFileName = ".pageproc-index.json"

// Index remembers the inputs and outputs of the previous processing pass.
type Index struct {
	// Config fingerprints the processor coordinates and options.
	Config  string                  `json:"config"`
	Inputs  map[string]string       `json:"inputs"`  // path -> fingerprint
	Outputs map[string]Dependencies `json:"outputs"` // generated path -> dependencies
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		Inputs:  make(map[string]string),
		Outputs: make(map[string]Dependencies),
	}
}

// LoadIndex reads an index. A missing file yields an empty index.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	idx := NewIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", path, err)
	}
	if idx.Inputs == nil {
		idx.Inputs = make(map[string]string)
	}
	if idx.Outputs == nil {
		idx.Outputs = make(map[string]Dependencies)
	}
	return idx, nil
}

// Save writes the index atomically.
func (i *Index) Save(path string) error {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

// OutputFiles lists the recorded outputs, sorted.
func (i *Index) OutputFiles() []string {
	out := make([]string, 0, len(i.Outputs))
	for p := range i.Outputs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Fingerprint hashes a file with BLAKE2b-256.
func Fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprints hashes every file.
func Fingerprints(files []*FileRef) (map[string]string, error) {
	out := make(map[string]string, len(files))
	for _, f := range files {
		fp, err := Fingerprint(f.Path)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", f.Path, err)
		}
		out[f.Path] = fp
	}
	return out, nil
}

// ConfigFingerprint hashes the processor coordinates, in order, and the
// options, sorted by key.
func ConfigFingerprint(coordinates []string, options map[string]string) string {
	var b strings.Builder
	for _, c := range coordinates {
		b.WriteString("processor\x00")
		b.WriteString(c)
		b.WriteByte('\n')
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("option\x00")
		b.WriteString(k)
		b.WriteByte('\x00')
		b.WriteString(options[k])
		b.WriteByte('\n')
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Plan is the outcome of comparing the current inputs with an Index.
type Plan struct {
	UpToDate bool
	// Changed lists added, modified and removed inputs.
	Changed []string
	// Dirty lists changed inputs that still exist.
	Dirty []string
	// Invalidated lists outputs that must be deleted and regenerated.
	Invalidated []string
	// Retained lists outputs that stay valid.
	Retained []string
	// FullScan is set when every input must be processed again.
	FullScan bool
	// ConfigChanged is set when the processor configuration differs from
	// the one recorded in the index.
	ConfigChanged bool
}

// Plan decides what has to be regenerated for the given input fingerprints
// and configuration fingerprint.
func (i *Index) Plan(current map[string]string, config string) Plan {
	var plan Plan
	empty := len(i.Inputs) == 0 && len(i.Outputs) == 0
	if !empty && i.Config != config {
		// Every output may depend on the configuration.
		plan.ConfigChanged = true
		plan.FullScan = true
		for p := range current {
			plan.Dirty = append(plan.Dirty, p)
		}
		sort.Strings(plan.Dirty)
		plan.Invalidated = i.OutputFiles()
		return plan
	}

	changed := make(map[string]bool)
	for p, fp := range current {
		if i.Inputs[p] != fp {
			changed[p] = true
			plan.Dirty = append(plan.Dirty, p)
		}
	}
	for p := range i.Inputs {
		if _, ok := current[p]; !ok {
			changed[p] = true
		}
	}
	for p := range changed {
		plan.Changed = append(plan.Changed, p)
	}
	sort.Strings(plan.Changed)
	sort.Strings(plan.Dirty)

	for _, out := range i.OutputFiles() {
		deps := i.Outputs[out]
		invalid := !exists(out) || (deps.Aggregating && len(changed) > 0)
		for _, f := range deps.Files {
			if changed[f] {
				invalid = true
			}
		}
		if !invalid {
			plan.Retained = append(plan.Retained, out)
			continue
		}
		plan.Invalidated = append(plan.Invalidated, out)
		if deps.Aggregating {
			plan.FullScan = true
		}
	}

	// Nothing recorded yet: treat as a clean build.
	if empty {
		plan.FullScan = true
		return plan
	}
	plan.UpToDate = len(plan.Changed) == 0 && len(plan.Invalidated) == 0
	return plan
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
