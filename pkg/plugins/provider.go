package plugins

import (
	"sort"

	"github.com/quka-ai/workbench/app/core"
)

func Setup(install func(p core.Plugins), mode string) {
	p := provider[mode]
	if p == nil {
		panic("Setup mode not found: " + mode)
	}
	install(p())
}

var provider = make(map[string]core.SetupFunc)

// RegisterProvider makes a mode selectable by name. Every Setup call gets a fresh plugin.
func RegisterProvider(key string, p core.SetupFunc) {
	provider[key] = p
}

func Modes() []string {
	var list []string
	for k := range provider {
		list = append(list, k)
	}
	sort.Strings(list)
	return list
}
