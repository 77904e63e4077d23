package xbmc

func Notify(header string, message string, image string) {
	var retVal string
	executeJSONRPCEx("Notify", &retVal, Args{header, message, image})
}

func Dialog(title string, message string) bool {
	retVal := 0
	executeJSONRPCEx("Dialog", &retVal, Args{title, message})
	return retVal != 0
}

// MultiSelect shows a multi-select dialog with the preselected indices
// checked. A nil result means the dialog was cancelled.
func MultiSelect(title string, items []string, preselect []int) []int {
	var retVal []int
	if err := executeJSONRPCEx("Dialog_MultiSelect", &retVal, Args{title, items, preselect}); err != nil {
		return nil
	}
	return retVal
}

