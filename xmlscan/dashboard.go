package xmlscan

import (
	"fmt"
	"strconv"
)

// DashboardHandler collects a dashboard definition into Fields. Top-level
// label and description are stored as-is; each <search> contributes
// search.<i>.query, search.<i>.earliest and search.<i>.latest.
type DashboardHandler struct {
	textCollector
	Fields map[string]string

	searches int
	inSearch bool
	depth    int
}

func NewDashboardHandler(fields map[string]string) *DashboardHandler {
	if fields == nil {
		fields = make(map[string]string)
	}
	return &DashboardHandler{Fields: fields}
}

func (h *DashboardHandler) StartElement(name string, _ map[string]string) error {
	h.depth++
	h.reset()
	if name == "search" {
		h.inSearch = true
	}
	return nil
}

func (h *DashboardHandler) EndElement(name string) error {
	defer func() { h.depth-- }()

	switch name {
	case "label", "description":
		// only the dashboard's own label, not panel titles
		if h.depth == 2 {
			h.Fields[name] = h.value()
		}
	case "query", "earliest", "latest":
		if h.inSearch {
			h.Fields[fmt.Sprintf("search.%d.%s", h.searches, name)] = h.value()
		}
	case "search":
		h.inSearch = false
		h.searches++
		h.Fields["search.count"] = strconv.Itoa(h.searches)
	}
	h.reset()
	return nil
}
