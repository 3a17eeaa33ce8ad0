package snapshot

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/program"
)

// Manifest is a declarative TOML description of a program image: classes,
// objects, and a root. Manifests drive fixture tests and the examples;
// nothing in the loader itself depends on them.
//
//	root = "origin"
//
//	[[classes]]
//	name = "Point"
//	fields = 2
//
//	[[objects]]
//	label = "origin"
//	kind = "instance"
//	class = "Point"
//	values = ["3", "@name"]
//
// Value strings are small-integer literals or @label references to other
// objects, in any order; forward references are resolved after every object
// exists.
type Manifest struct {
	Root    string           `toml:"root"`
	Classes []ManifestClass  `toml:"classes"`
	Objects []ManifestObject `toml:"objects"`
}

// ManifestClass declares one instance class.
type ManifestClass struct {
	Name   string `toml:"name"`
	Fields int    `toml:"fields"`
}

// ManifestObject declares one heap object. Kind selects which of the other
// fields apply: instances take a class and values, arrays take values,
// strings take text, byte arrays take hex, doubles take float, and large
// integers take int.
type ManifestObject struct {
	Label  string   `toml:"label"`
	Kind   string   `toml:"kind"`
	Class  string   `toml:"class"`
	Values []string `toml:"values"`
	Text   string   `toml:"text"`
	Hex    string   `toml:"hex"`
	Float  float64  `toml:"float"`
	Int    int64    `toml:"int"`
}

// LoadManifest parses the TOML manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("snapshot: parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// ParseManifest parses a TOML manifest from memory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot: parsing manifest: %w", err)
	}
	return &m, nil
}

// Build materializes the manifest: a class table, a heap holding every
// declared object, and the resolved root value. The caller owns the heap
// and ends it with Close or MigrateTo.
func (m *Manifest) Build() (*program.Program, *heap.Heap, heap.Word, error) {
	prog := program.New()
	classIDs := make(map[string]heap.ClassID, len(m.Classes))
	for _, c := range m.Classes {
		if _, dup := classIDs[c.Name]; dup {
			return nil, nil, 0, fmt.Errorf("snapshot: class %q declared twice: %w", c.Name, ErrBadManifest)
		}
		id, err := prog.RegisterClass(c.Name, c.Fields)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("snapshot: class %q: %w: %w", c.Name, ErrBadManifest, err)
		}
		classIDs[c.Name] = id
	}

	h, err := heap.New(prog)
	if err != nil {
		return nil, nil, 0, err
	}
	root, err := m.populate(h, classIDs)
	if err != nil {
		_ = h.Close()
		return nil, nil, 0, err
	}
	return prog, h, root, nil
}

// populate allocates the declared objects, then resolves and patches their
// values once every label has a reference.
func (m *Manifest) populate(h *heap.Heap, classIDs map[string]heap.ClassID) (heap.Word, error) {
	labels := make(map[string]heap.Ref)
	objects := make([]heap.Object, len(m.Objects))

	for i, decl := range m.Objects {
		obj, err := m.allocate(h, decl, classIDs)
		if err != nil {
			return 0, fmt.Errorf("snapshot: object %d (%q): %w", i, decl.Label, err)
		}
		objects[i] = obj
		if decl.Label == "" {
			continue
		}
		if _, dup := labels[decl.Label]; dup {
			return 0, fmt.Errorf("snapshot: label %q declared twice: %w", decl.Label, ErrBadManifest)
		}
		labels[decl.Label] = obj.Ref()
	}

	for i, decl := range m.Objects {
		if err := m.patch(h, objects[i], decl, labels); err != nil {
			return 0, fmt.Errorf("snapshot: object %d (%q): %w", i, decl.Label, err)
		}
	}

	if m.Root == "" {
		return heap.Smi(0), nil
	}
	return parseValue(m.Root, labels)
}

func (m *Manifest) allocate(h *heap.Heap, decl ManifestObject, classIDs map[string]heap.ClassID) (heap.Object, error) {
	switch decl.Kind {
	case "instance":
		id, ok := classIDs[decl.Class]
		if !ok {
			return heap.Object{}, fmt.Errorf("unknown class %q: %w", decl.Class, ErrBadManifest)
		}
		inst, err := h.AllocateInstance(id)
		if err != nil {
			return heap.Object{}, err
		}
		if len(decl.Values) != inst.FieldCount() {
			return heap.Object{}, fmt.Errorf("class %q has %d fields, manifest gives %d: %w",
				decl.Class, inst.FieldCount(), len(decl.Values), ErrBadManifest)
		}
		return inst.Object, nil
	case "array":
		arr, err := h.AllocateArrayUnfilled(len(decl.Values))
		if err != nil {
			return heap.Object{}, err
		}
		return arr.Object, nil
	case "string":
		str, err := h.AllocateString(decl.Text)
		if err != nil {
			return heap.Object{}, err
		}
		return str.Object, nil
	case "bytes":
		data, err := hex.DecodeString(decl.Hex)
		if err != nil {
			return heap.Object{}, fmt.Errorf("hex payload: %w: %w", ErrBadManifest, err)
		}
		ba, err := h.AllocateByteArray(data)
		if err != nil {
			return heap.Object{}, err
		}
		return ba.Object, nil
	case "double":
		d, err := h.AllocateDouble(decl.Float)
		if err != nil {
			return heap.Object{}, err
		}
		return d.Object, nil
	case "integer":
		li, err := h.AllocateLargeInteger(decl.Int)
		if err != nil {
			return heap.Object{}, err
		}
		return li.Object, nil
	default:
		return heap.Object{}, fmt.Errorf("unknown kind %q: %w", decl.Kind, ErrBadManifest)
	}
}

// patch fills instance fields and array slots; other kinds carry no values.
func (m *Manifest) patch(h *heap.Heap, obj heap.Object, decl ManifestObject, labels map[string]heap.Ref) error {
	if len(decl.Values) == 0 {
		return nil
	}
	switch decl.Kind {
	case "instance":
		inst, err := heap.AsInstance(obj, h.Meta())
		if err != nil {
			return err
		}
		for n, s := range decl.Values {
			w, err := parseValue(s, labels)
			if err != nil {
				return err
			}
			inst.SetField(n, w)
		}
	case "array":
		arr, err := heap.AsArray(obj)
		if err != nil {
			return err
		}
		for n, s := range decl.Values {
			w, err := parseValue(s, labels)
			if err != nil {
				return err
			}
			arr.SetAt(n, w)
		}
	default:
		return fmt.Errorf("kind %q takes no values: %w", decl.Kind, ErrBadManifest)
	}
	return nil
}

// parseValue turns a manifest value string into a value word: "@label" is a
// reference, anything else a small-integer literal.
func parseValue(s string, labels map[string]heap.Ref) (heap.Word, error) {
	if name, ok := strings.CutPrefix(s, "@"); ok {
		ref, ok := labels[name]
		if !ok {
			return 0, fmt.Errorf("unknown label %q: %w", name, ErrBadManifest)
		}
		return ref, nil
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w: %w", s, ErrBadManifest, err)
	}
	if !heap.FitsSmi(n) {
		return 0, fmt.Errorf("value %d does not fit a small integer, declare an integer object: %w", n, ErrBadManifest)
	}
	return heap.Smi(int32(n)), nil
}
