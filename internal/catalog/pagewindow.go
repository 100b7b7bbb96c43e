package catalog

// PageItem is one pagination control: a page number or a gap marker.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageWindow lists the first page, the last page, and pages next to current,
// collapsing each gap into one ellipsis.
func PageWindow(current, totalPages int) []PageItem {
	if totalPages < 1 {
		return []PageItem{}
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	items := make([]PageItem, 0, 7)
	last := 0
	for page := 1; page <= totalPages; page++ {
		if page != 1 && page != totalPages && (page < current-1 || page > current+1) {
			continue
		}
		if last != 0 && page-last > 1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: page, Current: page == current})
		last = page
	}
	return items
}
