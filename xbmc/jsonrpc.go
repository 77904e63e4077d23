package xbmc

import (
	"net"
	"net/rpc/jsonrpc"
	"sync"
	"time"
)

type Args []interface{}

// XBMCExJSONRPCHost is the JSON-RPC bridge served by the add-on's Python side.
const XBMCExJSONRPCHost = "localhost:65252"

// Caller performs a single JSON-RPC call against the host.
type Caller interface {
	Call(method string, args interface{}, reply interface{}) error
}

type dialCaller struct {
	host string
}

func (d dialCaller) Call(method string, args interface{}, reply interface{}) error {
	dialer := net.Dialer{Timeout: 5 * time.Second}
	c, err := dialer.Dial("tcp", d.host)
	if err != nil {
		return err
	}
	client := jsonrpc.NewClient(c)
	defer client.Close()
	return client.Call(method, args, reply)
}

var (
	callerMu sync.RWMutex
	exCaller Caller = dialCaller{host: XBMCExJSONRPCHost}
)

// SetCaller routes the add-on bridge through c. It returns a function
// restoring the previous caller.
func SetCaller(c Caller) (restore func()) {
	callerMu.Lock()
	prev := exCaller
	exCaller = c
	callerMu.Unlock()
	return func() {
		callerMu.Lock()
		exCaller = prev
		callerMu.Unlock()
	}
}

func executeJSONRPCEx(method string, retVal interface{}, args []interface{}) error {
	if args == nil {
		args = Args{}
	}
	callerMu.RLock()
	c := exCaller
	callerMu.RUnlock()
	return c.Call(method, args, retVal)
}
