package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/jscyril/mp3deck/internal/config"
)

// KeyMap holds the player key bindings
type KeyMap struct {
	Open        key.Binding
	PlayPause   key.Binding
	Stop        key.Binding
	Loop        key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	SeekStart   key.Binding
	SeekFive    key.Binding
	SeekForward key.Binding
	SeekBack    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// NewKeyMap builds bindings from the comma separated lists in cfg
func NewKeyMap(cfg config.KeyMap) KeyMap {
	return KeyMap{
		Open:        binding(cfg.Open, "open file"),
		PlayPause:   binding(cfg.PlayPause, "play/pause"),
		Stop:        binding(cfg.Stop, "stop"),
		Loop:        binding(cfg.Loop, "loop"),
		VolumeUp:    binding(cfg.VolumeUp, "vol+"),
		VolumeDown:  binding(cfg.VolumeDown, "vol-"),
		SeekStart:   binding(cfg.SeekStart, "to start"),
		SeekFive:    binding(cfg.SeekFive, "seek 0:05"),
		SeekForward: binding(cfg.SeekForward, "forward"),
		SeekBack:    binding(cfg.SeekBack, "back"),
		Help:        binding(cfg.Help, "help"),
		Quit:        binding(cfg.Quit, "quit"),
	}
}

func binding(spec, desc string) key.Binding {
	keys := splitKeys(spec)
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(displayKey(keys[0]), desc),
	)
}

// splitKeys splits "a,b" into keys. A lone space is a key, not padding.
func splitKeys(spec string) []string {
	var keys []string
	for _, k := range strings.Split(spec, ",") {
		if k != " " {
			k = strings.TrimSpace(k)
		}
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func displayKey(k string) string {
	switch k {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	return k
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.PlayPause, k.Stop, k.Loop, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.PlayPause, k.Stop, k.Loop},
		{k.VolumeUp, k.VolumeDown, k.SeekStart, k.SeekFive},
		{k.SeekBack, k.SeekForward, k.Help, k.Quit},
	}
}
