package cfg

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/lophius/drover"
	"github.com/lophius/drover/models"
)

const GraphMagic = "DCFG"

const (
	recNode = 1
	recEdge = 2
)

// GraphHeader opens an exported graph: a struc-packed fixed header followed
// by a snappy-framed stream of tagged node and edge records.
type GraphHeader struct {
	Magic   string `struc:"[4]byte"`
	Version uint32
	Entry   uint64
	Arch    string `struc:"[32]byte"`
}

type Writer struct {
	zw *snappy.Writer
}

func NewWriter(w io.Writer, archName string, entry uint64) (*Writer, error) {
	header := &GraphHeader{
		Magic:   GraphMagic,
		Version: 1,
		Entry:   entry,
		Arch:    archName,
	}
	if err := struc.Pack(w, header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	return &Writer{zw: snappy.NewBufferedWriter(w)}, nil
}

func (w *Writer) writeString(s string) error {
	if err := binary.Write(w.zw, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w.zw, s)
	return err
}

func (w *Writer) WriteNode(n *Node) error {
	fixed := []interface{}{
		uint8(recNode), n.Addr, n.Size, uint8(n.Kind), uint32(n.Insns),
	}
	for _, v := range fixed {
		if err := binary.Write(w.zw, binary.LittleEndian, v); err != nil {
			return errors.Wrap(err, "failed to pack node")
		}
	}
	if err := w.writeString(n.Variant); err != nil {
		return errors.Wrap(err, "failed to pack node")
	}
	return errors.Wrap(w.writeString(n.Symbol), "failed to pack node")
}

func (w *Writer) WriteEdge(e Edge) error {
	for _, v := range []interface{}{uint8(recEdge), e.From, e.To, uint8(e.Kind)} {
		if err := binary.Write(w.zw, binary.LittleEndian, v); err != nil {
			return errors.Wrap(err, "failed to pack edge")
		}
	}
	return nil
}

// WriteGraph streams every node then every edge. Close flushes the stream.
func (w *Writer) WriteGraph(g *Graph) error {
	for _, n := range g.Nodes() {
		if err := w.WriteNode(n); err != nil {
			return err
		}
	}
	for _, e := range g.AllEdges() {
		if err := w.WriteEdge(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Close() error {
	return w.zw.Close()
}

type Reader struct {
	Header GraphHeader
	zr     *snappy.Reader
}

func NewReader(r io.Reader) (*Reader, error) {
	ret := &Reader{}
	if err := struc.Unpack(r, &ret.Header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if ret.Header.Magic != GraphMagic {
		return nil, errors.New("invalid graph file magic")
	}
	ret.Header.Arch = strings.TrimRight(ret.Header.Arch, "\x00")
	ret.zr = snappy.NewReader(r)
	return ret, nil
}

func (r *Reader) readString() (string, error) {
	var n uint16
	if err := binary.Read(r.zr, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.zr, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadGraph rebuilds the exported graph, consuming the stream to EOF.
func (r *Reader) ReadGraph() (*Graph, error) {
	g := NewGraph(r.Header.Entry)
	for {
		var tag uint8
		if err := binary.Read(r.zr, binary.LittleEndian, &tag); err != nil {
			if err == io.EOF {
				return g, nil
			}
			return nil, errors.Wrap(err, "failed to read record tag")
		}
		switch tag {
		case recNode:
			n := &Node{}
			var kind uint8
			var insns uint32
			for _, v := range []interface{}{&n.Addr, &n.Size, &kind, &insns} {
				if err := binary.Read(r.zr, binary.LittleEndian, v); err != nil {
					return nil, errors.Wrap(err, "failed to unpack node")
				}
			}
			n.Kind = drover.UnitKind(kind)
			n.Insns = int(insns)
			var err error
			if n.Variant, err = r.readString(); err != nil {
				return nil, errors.Wrap(err, "failed to unpack node")
			}
			if n.Symbol, err = r.readString(); err != nil {
				return nil, errors.Wrap(err, "failed to unpack node")
			}
			g.AddNode(n)
		case recEdge:
			var from, to uint64
			var kind uint8
			for _, v := range []interface{}{&from, &to, &kind} {
				if err := binary.Read(r.zr, binary.LittleEndian, v); err != nil {
					return nil, errors.Wrap(err, "failed to unpack edge")
				}
			}
			g.AddEdge(from, to, models.JumpKind(kind))
		default:
			return nil, errors.Errorf("unknown record tag %d", tag)
		}
	}
}
