package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/lophius/drover"
	"github.com/lophius/drover/hook"
)

const hookPresetName = "hooks.json"

// hookPreset is one entry of a hooks file. Addresses are strings so hex
// and decimal both work.
type hookPreset struct {
	Addr    string            `json:"addr"`
	Variant string            `json:"variant"`
	Params  map[string]string `json:"params"`
}

func parseHooks(data []byte) ([]hookPreset, error) {
	var presets []hookPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, errors.Wrap(err, "parsing hooks file")
	}
	for _, p := range presets {
		if p.Variant == "" {
			return nil, errors.Errorf("hook at %q has no variant", p.Addr)
		}
		if _, err := strconv.ParseUint(p.Addr, 0, 64); err != nil {
			return nil, errors.Wrapf(err, "bad hook address %q", p.Addr)
		}
	}
	return presets, nil
}

func loadHookFile(path string) ([]hookPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return parseHooks(data)
}

// discoverHooks finds a hooks.json in the user or system config folders.
func discoverHooks() ([]hookPreset, error) {
	dirs := configdir.New("", "drover")
	folder := dirs.QueryFolderContainsFile(hookPresetName)
	if folder == nil {
		return nil, nil
	}
	data, err := folder.ReadFile(hookPresetName)
	if err != nil {
		return nil, errors.Wrap(err, "reading discovered hooks file")
	}
	return parseHooks(data)
}

func registerHooks(p *drover.Project, presets []hookPreset) {
	for _, preset := range presets {
		addr, _ := strconv.ParseUint(preset.Addr, 0, 64)
		p.Hooks.Register(addr, &hook.Descriptor{
			Variant: preset.Variant,
			Params:  preset.Params,
		})
	}
}
