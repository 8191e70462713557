package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lophius/drover"
	"github.com/lophius/drover/arch"
	"github.com/lophius/drover/asm"
	"github.com/lophius/drover/cfg"
	"github.com/lophius/drover/cmd"
	"github.com/lophius/drover/concrete"
	"github.com/lophius/drover/lift"
	"github.com/lophius/drover/loader"
	"github.com/lophius/drover/models"
)

const shellcodeBase = 0x10000

func parseAvoid(s string) (map[uint64]bool, error) {
	if s == "" {
		return nil, nil
	}
	avoid := make(map[uint64]bool)
	for _, part := range strings.Split(s, ",") {
		addr, err := strconv.ParseUint(strings.TrimSpace(part), 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad avoid address %q", part)
		}
		avoid[addr] = true
	}
	return avoid, nil
}

func makeLoader(args []string, archName string, entry uint64, hexMode, asmMode bool) (models.Loader, error) {
	if !hexMode && !asmMode {
		if len(args) != 1 {
			return nil, errors.Wrap(cmd.ErrUsage, "exactly one binary expected")
		}
		return loader.LoadFile(args[0])
	}
	if archName == "" {
		return nil, errors.Wrap(cmd.ErrUsage, "-hex and -asm require -arch")
	}
	if len(args) != 1 {
		return nil, errors.Wrap(cmd.ErrUsage, "exactly one code argument expected")
	}
	profile, err := arch.GetArch(archName)
	if err != nil {
		return nil, err
	}
	if entry == 0 {
		entry = shellcodeBase
	}
	var code []byte
	if asmMode {
		code, err = asm.New().Assemble(profile, args[0], entry)
	} else {
		code, err = hex.DecodeString(args[0])
		err = errors.Wrap(err, "bad hex input")
	}
	if err != nil {
		return nil, err
	}
	return loader.NewNullLoader(profile, entry, entry, code, false), nil
}

func printGraph(g *cfg.Graph, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding graph")
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("entry %#x, %d blocks\n", g.Entry(), g.Len())
	for _, n := range g.Nodes() {
		line := fmt.Sprintf("%#x [%s]", n.Addr, n.Kind)
		if n.Kind == drover.UnitBlock {
			line += fmt.Sprintf(" +%#x insns=%d", n.Size, n.Insns)
		}
		if n.Variant != "" {
			line += " " + n.Variant
		}
		if n.Symbol != "" {
			line += " <" + n.Symbol + ">"
		}
		fmt.Println(line)
		for _, e := range g.Edges(n.Addr) {
			fmt.Printf("    -> %#x [%s]\n", e.To, e.Kind)
		}
	}
	return nil
}

func exportGraph(g *cfg.Graph, archName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	w, err := cfg.NewWriter(f, archName, g.Entry())
	if err != nil {
		return err
	}
	if err := w.WriteGraph(g); err != nil {
		return err
	}
	return errors.Wrap(w.Close(), "flushing export")
}

func printRegs(p *drover.Project) error {
	st, err := p.InitialState()
	if err != nil {
		return err
	}
	regs, err := p.Arch.RegDump(st)
	if err != nil {
		return err
	}
	for _, r := range regs {
		fmt.Printf("%-8s %#x\n", r.Name, r.Val)
	}
	return nil
}

func main() {
	c := cmd.New("drover")
	var (
		archName  *string
		entry     *uint64
		hexMode   *bool
		asmMode   *bool
		lifterSel *string
		hooksFile *string
		avoidArg  *string
		maxInsns  *int
		maxSize   *int
		asJSON    *bool
		export    *string
		regs      *bool
	)
	c.SetupFlags = func() error {
		archName = c.Flags.String("arch", "", "architecture for -hex/-asm input ("+strings.Join(arch.Names(), ", ")+")")
		entry = c.Flags.Uint64("entry", 0, "entry point override")
		hexMode = c.Flags.Bool("hex", false, "treat the argument as hex shellcode")
		asmMode = c.Flags.Bool("asm", false, "assemble the argument as shellcode")
		lifterSel = c.Flags.String("lifter", "capstone", "lifter backend (capstone, x86)")
		hooksFile = c.Flags.String("hooks", "", "hook preset file (json)")
		avoidArg = c.Flags.String("avoid", "", "comma-separated addresses to not explore past")
		maxInsns = c.Flags.Int("maxinsns", 0, "max instructions per block")
		maxSize = c.Flags.Int("maxsize", 0, "max bytes per block")
		asJSON = c.Flags.Bool("json", false, "json graph output")
		export = c.Flags.String("export", "", "write the graph to a file")
		regs = c.Flags.Bool("regs", false, "print the initial register dump")
		return nil
	}
	c.Run = func(args []string) error {
		l, err := makeLoader(args, *archName, *entry, *hexMode, *asmMode)
		if err != nil {
			return err
		}

		var lifter models.Lifter
		switch *lifterSel {
		case "capstone":
			lifter = lift.NewCapstr()
		case "x86":
			lifter = lift.NewX86()
		default:
			return errors.Wrapf(cmd.ErrUsage, "unknown lifter %q", *lifterSel)
		}

		p, err := drover.New(l, concrete.New(), lifter, "static", nil)
		if err != nil {
			return err
		}

		presets, err := discoverHooks()
		if err != nil {
			return err
		}
		if *hooksFile != "" {
			if presets, err = loadHookFile(*hooksFile); err != nil {
				return err
			}
		}
		registerHooks(p, presets)

		if *regs {
			if err := printRegs(p); err != nil {
				return err
			}
		}

		avoid, err := parseAvoid(*avoidArg)
		if err != nil {
			return err
		}
		builder := cfg.NewBuilder(models.BlockLimits{
			MaxSize:  *maxSize,
			MaxInsns: *maxInsns,
		})
		if syms, err := l.Symbols(); err == nil {
			builder.Symbols = syms
		}
		if err := p.ConstructCFG(builder, avoid); err != nil {
			return err
		}

		if *export != "" {
			if err := exportGraph(builder.Graph, p.Arch.Name, *export); err != nil {
				return err
			}
		}
		return printGraph(builder.Graph, *asJSON)
	}
	c.Main(os.Args)
}
