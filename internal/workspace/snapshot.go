package workspace

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"luasema/internal/sema"
)

// Snapshot is a serialisable dump of the committed index.
type Snapshot struct {
	Documents []string         `json:"documents" msgpack:"documents"`
	Types     []TypeSnapshot   `json:"types" msgpack:"types"`
	Globals   []GlobalSnapshot `json:"globals" msgpack:"globals"`
	Stats     StatsSnapshot    `json:"stats" msgpack:"stats"`
}

type TypeSnapshot struct {
	Name     string           `json:"name" msgpack:"name"`
	Kind     string           `json:"kind" msgpack:"kind"`
	Attrs    []string         `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Generics []string         `json:"generics,omitempty" msgpack:"generics,omitempty"`
	Supers   []string         `json:"supers,omitempty" msgpack:"supers,omitempty"`
	Base     string           `json:"base,omitempty" msgpack:"base,omitempty"`
	Members  []MemberSnapshot `json:"members,omitempty" msgpack:"members,omitempty"`
}

type MemberSnapshot struct {
	Name     string `json:"name" msgpack:"name"`
	Type     string `json:"type" msgpack:"type"`
	Owner    string `json:"owner" msgpack:"owner"`
	Declared bool   `json:"declared,omitempty" msgpack:"declared,omitempty"`
}

type GlobalSnapshot struct {
	Name string `json:"name" msgpack:"name"`
	Type string `json:"type" msgpack:"type"`
	Defs int    `json:"defs" msgpack:"defs"`
}

type StatsSnapshot struct {
	Documents int `json:"documents" msgpack:"documents"`
	Globals   int `json:"globals" msgpack:"globals"`
	Owners    int `json:"owners" msgpack:"owners"`
	Types     int `json:"types" msgpack:"types"`
}

// Snapshot captures types with their resolved members and every global.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	in := sema.New(w.idx, w.mgr)
	st := w.idx.Stats()
	snap := Snapshot{
		Stats: StatsSnapshot{
			Documents: st.Docs,
			Globals:   st.Globals,
			Owners:    st.Owners,
			Types:     w.mgr.Len(),
		},
	}
	for _, id := range w.idx.Docs() {
		if doc := w.ds.Get(id); doc != nil {
			snap.Documents = append(snap.Documents, doc.URI)
		}
	}
	for _, rec := range w.mgr.Records() {
		ts := TypeSnapshot{
			Name:     rec.Name,
			Kind:     rec.Kind.String(),
			Attrs:    rec.Attrs,
			Generics: rec.Generics,
		}
		if rec.Base != nil {
			ts.Base = rec.Base.String()
		}
		for _, s := range rec.Supers {
			ts.Supers = append(ts.Supers, s.String())
		}
		t := rec.Type()
		for _, m := range w.mgr.Members(rec) {
			ts.Members = append(ts.Members, MemberSnapshot{
				Name:     m.Name,
				Type:     in.MemberType(t, m.Name).String(),
				Owner:    m.Owner,
				Declared: m.Declared,
			})
		}
		snap.Types = append(snap.Types, ts)
	}
	for _, g := range w.globalInfos(in) {
		snap.Globals = append(snap.Globals, GlobalSnapshot{
			Name: g.Name,
			Type: g.Type.String(),
			Defs: len(g.Locations),
		})
	}
	return snap
}

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Encode writes the snapshot in the given format.
func (s Snapshot) Encode(out io.Writer, format Format) error {
	switch format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(out)
		enc.SetSortMapKeys(true)
		return enc.Encode(s)
	case FormatJSON, "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
}

// DecodeSnapshot reads a snapshot written by Encode.
func DecodeSnapshot(in io.Reader, format Format) (Snapshot, error) {
	var s Snapshot
	var err error
	switch format {
	case FormatMsgpack:
		err = msgpack.NewDecoder(in).Decode(&s)
	case FormatJSON, "":
		err = json.NewDecoder(in).Decode(&s)
	default:
		err = fmt.Errorf("unknown snapshot format %q", format)
	}
	return s, err
}
