package xbmc

import "fmt"

func TranslatePath(path string) (retVal string) {
	executeJSONRPCEx("TranslatePath", &retVal, Args{path})
	return
}

func ExecuteBuiltin(command string) error {
	var retVal string
	return executeJSONRPCEx("ExecuteBuiltin", &retVal, Args{command})
}

// ContainerRefresh reloads the directory listing currently shown by the host.
func ContainerRefresh() error {
	return ExecuteBuiltin("XBMC.Container.Refresh()")
}

// ContainerUpdate replaces the current directory listing with url.
func ContainerUpdate(url string) error {
	return ExecuteBuiltin(fmt.Sprintf("XBMC.Container.Update(%s)", url))
}

func RunPlugin(url string) string {
	return fmt.Sprintf("XBMC.RunPlugin(%s)", url)
}

