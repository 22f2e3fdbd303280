package xmlscan

import "errors"

// SessionHandler reads <session id="..."><property name="k">v</property></session>
// into Properties, with the session id under "id".
type SessionHandler struct {
	textCollector
	Properties map[string]string

	property string
}

func NewSessionHandler(props map[string]string) *SessionHandler {
	if props == nil {
		props = make(map[string]string)
	}
	return &SessionHandler{Properties: props}
}

func (h *SessionHandler) StartElement(name string, attrs map[string]string) error {
	h.reset()
	switch name {
	case "session":
		if id, ok := attrs["id"]; ok {
			h.Properties["id"] = id
		}
	case "property":
		h.property = attrs["name"]
		if h.property == "" {
			return errors.New("session: property without a name")
		}
	}
	return nil
}

func (h *SessionHandler) EndElement(name string) error {
	if name == "property" {
		h.Properties[h.property] = h.value()
		h.property = ""
	}
	h.reset()
	return nil
}
