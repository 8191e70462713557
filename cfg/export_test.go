package cfg

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lophius/drover"
	"github.com/lophius/drover/models"
)

func sampleGraph() *Graph {
	g := NewGraph(0x1000)
	g.AddNode(&Node{Addr: 0x1000, Size: 8, Kind: drover.UnitBlock, Insns: 3, Symbol: "main"})
	g.AddNode(&Node{Addr: 0x2000, Kind: drover.UnitHook, Variant: "memcpy"})
	g.AddNode(&Node{Addr: 0x1012, Kind: drover.UnitSyscall})
	g.AddEdge(0x1000, 0x2000, models.JumpCall)
	g.AddEdge(0x1000, 0x1012, models.JumpSyscall)
	return g
}

func TestExportRoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, "AMD64", g.Entry())
	if err != nil {
		t.Fatal("NewWriter failed:", err)
	}
	if err := w.WriteGraph(g); err != nil {
		t.Fatal("WriteGraph failed:", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal("Close failed:", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal("NewReader failed:", err)
	}
	if r.Header.Arch != "AMD64" || r.Header.Version != 1 {
		t.Errorf("header = %+v", r.Header)
	}
	got, err := r.ReadGraph()
	if err != nil {
		t.Fatal("ReadGraph failed:", err)
	}

	if got.Entry() != g.Entry() || got.Len() != g.Len() {
		t.Fatalf("entry %#x len %d", got.Entry(), got.Len())
	}
	for _, want := range g.Nodes() {
		n := got.Node(want.Addr)
		if n == nil {
			t.Errorf("missing node %#x", want.Addr)
			continue
		}
		if *n != *want {
			t.Errorf("node %#x = %+v, want %+v", want.Addr, n, want)
		}
	}
	wantEdges := g.AllEdges()
	gotEdges := got.AllEdges()
	if len(gotEdges) != len(wantEdges) {
		t.Fatalf("edges = %+v", gotEdges)
	}
	for i := range wantEdges {
		if gotEdges[i] != wantEdges[i] {
			t.Errorf("edge %d = %+v, want %+v", i, gotEdges[i], wantEdges[i])
		}
	}
}

func TestExportBadMagic(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("XXXX\x00\x00\x00\x01garbage padding to fill the header........")))
	if err == nil {
		t.Fatal("bad magic accepted")
	}
}

func TestGraphJSON(t *testing.T) {
	data, err := json.Marshal(sampleGraph())
	if err != nil {
		t.Fatal("marshal failed:", err)
	}
	var out struct {
		Entry uint64 `json:"entry"`
		Nodes []struct {
			Addr    uint64 `json:"addr"`
			Kind    string `json:"kind"`
			Variant string `json:"variant"`
		} `json:"nodes"`
		Edges []struct {
			From uint64 `json:"from"`
			To   uint64 `json:"to"`
			Kind string `json:"kind"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal("unmarshal failed:", err)
	}
	if out.Entry != 0x1000 || len(out.Nodes) != 3 || len(out.Edges) != 2 {
		t.Fatalf("json = %s", data)
	}
	// nodes come out sorted by address
	if out.Nodes[0].Addr != 0x1000 || out.Nodes[0].Kind != "block" {
		t.Errorf("first node = %+v", out.Nodes[0])
	}
	if out.Nodes[2].Variant != "memcpy" {
		t.Errorf("hook node = %+v", out.Nodes[2])
	}
	if out.Edges[0].Kind != "syscall" && out.Edges[1].Kind != "syscall" {
		t.Errorf("edges = %+v", out.Edges)
	}
}
