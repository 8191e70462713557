package cfg

import (
	log "github.com/sirupsen/logrus"

	"github.com/lophius/drover"
	"github.com/lophius/drover/models"
)

// Builder explores statically-known control flow through a BlockResolver.
// Hook and syscall nodes are leaves; block nodes expand through their known
// exits, each successor getting its own cloned state. Indirect transfers
// are recorded as nodes without outgoing edges for their unknown targets.
type Builder struct {
	Limits   models.BlockLimits
	MaxNodes int

	// Symbols annotates nodes with the covering symbol name when set.
	Symbols []models.Symbol

	// Graph holds the result of the last Construct call.
	Graph *Graph
}

func NewBuilder(limits models.BlockLimits) *Builder {
	return &Builder{Limits: limits}
}

func (b *Builder) symbolFor(addr uint64) string {
	for _, sym := range b.Symbols {
		if sym.Contains(addr) {
			return sym.Name
		}
	}
	return ""
}

// Construct implements drover.CFGBuilder. An entry that fails to resolve
// aborts construction; later failures abandon that path with a warning and
// exploration continues.
func (b *Builder) Construct(entry *drover.Location, r drover.BlockResolver, avoid map[uint64]bool) error {
	b.Graph = nil
	work := []*drover.Location{entry}
	for len(work) > 0 {
		loc := work[len(work)-1]
		work = work[:len(work)-1]

		unit, err := r.Resolve(loc, b.Limits)
		if err != nil {
			if b.Graph == nil {
				return err
			}
			log.WithFields(log.Fields{
				"target": loc.Target,
				"err":    err,
			}).Warn("abandoning unresolvable path")
			continue
		}
		addr := unit.UnitAddr()
		if b.Graph == nil {
			b.Graph = NewGraph(addr)
		}
		if b.Graph.Node(addr) != nil {
			continue
		}
		node := &Node{
			Addr:   addr,
			Kind:   unit.UnitKind(),
			Symbol: b.symbolFor(addr),
		}
		switch u := unit.(type) {
		case *drover.HookUnit:
			node.Variant = u.Desc.Variant
		case *drover.BlockUnit:
			node.Size = u.Block.Size
			node.Insns = len(u.Block.Ins)
		}
		b.Graph.AddNode(node)
		log.WithFields(log.Fields{
			"addr": addr,
			"kind": node.Kind,
		}).Debug("cfg node")

		if avoid[addr] {
			log.WithFields(log.Fields{"addr": addr}).Debug("avoided address, not expanding")
			continue
		}
		if b.MaxNodes > 0 && b.Graph.Len() >= b.MaxNodes {
			continue
		}
		bu, ok := unit.(*drover.BlockUnit)
		if !ok {
			continue
		}
		for _, exit := range bu.Block.Exits {
			if !exit.Known {
				log.WithFields(log.Fields{
					"addr": addr,
					"kind": exit.Kind,
				}).Debug("skipping indirect exit")
				continue
			}
			b.Graph.AddEdge(addr, exit.Target, exit.Kind)
			if b.Graph.Node(exit.Target) == nil {
				work = append(work, drover.NewLocation(
					models.Const(exit.Target), bu.State.Clone(), exit.Kind))
			}
		}
	}
	return nil
}
