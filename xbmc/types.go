package xbmc

type View struct {
	ContentType string    `json:"content_type"`
	Items       ListItems `json:"items"`
}

type ListItems []*ListItem

type ListItem struct {
	Label       string            `json:"label"`
	Label2      string            `json:"label2,omitempty"`
	Icon        string            `json:"icon"`
	Thumbnail   string            `json:"thumbnail"`
	IsPlayable  bool              `json:"is_playable"`
	Path        string            `json:"path"`
	Info        *ListItemInfo     `json:"info,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	Art         *ListItemArt      `json:"art,omitempty"`
	ContextMenu [][]string        `json:"context_menu,omitempty"`
}

type ListItemInfo struct {
	Count int    `json:"count,omitempty"`
	Size  int    `json:"size,omitempty"`
	Date  string `json:"date,omitempty"`

	Year        int    `json:"year,omitempty"`
	PlayCount   int    `json:"playcount,omitempty"`
	Plot        string `json:"plot,omitempty"`
	PlotOutline string `json:"plotoutline,omitempty"`
	Title       string `json:"title,omitempty"`
	SortTitle   string `json:"sorttitle,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Studio      string `json:"studio,omitempty"`
	Aired       string `json:"aired,omitempty"`
	Premiered   string `json:"premiered,omitempty"`
	DateAdded   string `json:"dateadded,omitempty"`
}

type ListItemArt struct {
	Thumbnail string `json:"thumb,omitempty"`
	Poster    string `json:"poster,omitempty"`
	FanArt    string `json:"fanart,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

func NewView(contentType string, items ListItems) *View {
	return &View{
		ContentType: contentType,
		Items:       items,
	}
}

// ContextMenuEntry builds a [label, builtin] pair for ListItem.ContextMenu.
func ContextMenuEntry(label string, builtin string) []string {
	return []string{label, builtin}
}
