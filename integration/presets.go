package integration

import "fmt"

// Package integration provides node presets for the essex runtime. A preset
// bundles the settings that trade resources against convenience (peer count,
// gossip caches, journaling, the payload self-check) into a named profile so
// operators can start a node for a workload without tweaking every flag.
//
// Usage:
//   p := integration.LitePreset()    // for local development
//   p := integration.FullPreset()    // for long-running peers
//   p := integration.ArchivePreset() // for nodes keeping a long ledger
//
// The launcher merges the chosen preset over its defaults, before the config
// file and CLI flags are applied.

// PresetConfig captures the tunable parameters that vary across profiles.
// Network rules other than ledger capacity are not part of a preset: they must
// agree across every node of a network.
type PresetConfig struct {
	Name          string  // human-readable identifier (e.g., "lite", "full")
	Capacity      int     // ledger capacity in blocks, 0 keeps the network rule
	MaxPeers      int     // maximum number of gossip peers
	SeenCacheSize int     // entries in the gossip dedup cache
	InboundRate   float64 // inbound messages per second per peer
	Journal       bool    // append accepted blocks to the data directory journal
	SelfCheck     bool    // run the encrypt/decrypt round trip on minted payloads
}

func DefaultPreset() PresetConfig {

	return PresetConfig{
		Name:          "default",
		Capacity:      0,    // the network rule decides
		MaxPeers:      25,   // enough fan-out for a small overlay
		SeenCacheSize: 4096, // a few minutes of traffic at the default rate
		InboundRate:   50,
		Journal:       true,
		SelfCheck:     true,
	}
}

// LitePreset returns a lightweight profile for development and CI. Nothing is
// written to disk and the self-check is skipped to keep minting cheap.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.MaxPeers = 8
	cfg.SeenCacheSize = 1024
	cfg.InboundRate = 20
	cfg.Journal = false
	cfg.SelfCheck = false
	return cfg
}

// FullPreset returns a profile for long-running peers that relay for others.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.MaxPeers = 50
	cfg.SeenCacheSize = 8192
	cfg.InboundRate = 100
	return cfg
}

// ArchivePreset is FullPreset with a much longer ledger.
func ArchivePreset() PresetConfig {
	cfg := FullPreset()
	cfg.Name = "archive"
	cfg.Capacity = 1000
	cfg.SeenCacheSize = 16384
	return cfg
}

// GetPresetByName returns the preset with the given name. An empty name
// selects the default preset.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "", "default":
		return DefaultPreset(), nil
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "archive":
		return ArchivePreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset %q (want default, lite, full or archive)", name)
	}
}

// ApplyPreset overlays the non-zero numeric fields of preset onto target and
// copies its switches. The name always follows the preset.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if target == nil {
		return
	}
	target.Name = preset.Name
	if preset.Capacity > 0 {
		target.Capacity = preset.Capacity
	}
	if preset.MaxPeers > 0 {
		target.MaxPeers = preset.MaxPeers
	}
	if preset.SeenCacheSize > 0 {
		target.SeenCacheSize = preset.SeenCacheSize
	}
	if preset.InboundRate > 0 {
		target.InboundRate = preset.InboundRate
	}
	target.Journal = preset.Journal
	target.SelfCheck = preset.SelfCheck
}
