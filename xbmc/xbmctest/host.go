// Package xbmctest provides an in-memory host for exercising code that talks
// to Kodi through the xbmc package.
package xbmctest

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Sopor/plugin.video.retrospect/xbmc"
)

// Call is one recorded host invocation.
type Call struct {
	Method string
	Args   []interface{}
}

// Host answers settings calls from Settings and every other method from
// Replies. Unknown methods succeed with a zero reply.
type Host struct {
	mu       sync.Mutex
	Settings map[string]string
	Replies  map[string]interface{}
	Calls    []Call
}

func NewHost() *Host {
	return &Host{
		Settings: map[string]string{},
		Replies:  map[string]interface{}{},
	}
}

// Install routes the xbmc package through h until the returned func is called.
func (h *Host) Install() func() {
	return xbmc.SetCaller(h)
}

func (h *Host) Call(method string, args interface{}, reply interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, _ := args.([]interface{})
	if a, ok := args.(xbmc.Args); ok {
		list = a
	}
	h.Calls = append(h.Calls, Call{Method: method, Args: list})

	var answer interface{}
	switch method {
	case "GetSetting":
		answer = h.Settings[fmt.Sprint(list[0])]
	case "SetSetting":
		h.Settings[fmt.Sprint(list[0])] = fmt.Sprint(list[1])
		answer = 0
	default:
		v, ok := h.Replies[method]
		if !ok {
			return nil
		}
		answer = v
	}
	if reply == nil {
		return nil
	}
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, reply)
}

// Methods returns the recorded method names in call order.
func (h *Host) Methods() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	methods := make([]string, 0, len(h.Calls))
	for _, c := range h.Calls {
		methods = append(methods, c.Method)
	}
	return methods
}

// Builtins returns the arguments of every ExecuteBuiltin call.
func (h *Host) Builtins() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var builtins []string
	for _, c := range h.Calls {
		if c.Method == "ExecuteBuiltin" && len(c.Args) > 0 {
			builtins = append(builtins, fmt.Sprint(c.Args[0]))
		}
	}
	return builtins
}
