// Package xmlscan drives callback-style content handlers from a streaming
// XML decoder, and provides handlers for dashboard, session and GPX files.
package xmlscan

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Handler receives document events in order. Returning an error stops the
// scan and is returned from Scan.
type Handler interface {
	StartElement(name string, attrs map[string]string) error
	EndElement(name string) error
	CharData(text string) error
}

// Scan decodes r token by token. Element and attribute names are passed
// without their namespace prefix.
func Scan(r io.Reader, h Handler) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			err = h.StartElement(t.Name.Local, attrs)
		case xml.EndElement:
			err = h.EndElement(t.Name.Local)
		case xml.CharData:
			err = h.CharData(string(t))
		}
		if err != nil {
			return err
		}
	}
}

// textCollector accumulates character data of the innermost open element.
type textCollector struct {
	text strings.Builder
}

func (c *textCollector) reset() {
	c.text.Reset()
}

func (c *textCollector) CharData(text string) error {
	c.text.WriteString(text)
	return nil
}

func (c *textCollector) value() string {
	return strings.TrimSpace(c.text.String())
}
