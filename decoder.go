package wikimcp

import (
	"bufio"
	"compress/bzip2"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for inputs that are neither .xml nor .bz2.
var ErrUnsupportedFormat = errors.New("unsupported file format, use .xml or .bz2 files")

// Format identifies how the dump bytes are framed.
type Format int

const (
	// FormatXML is a plain xml dump.
	FormatXML Format = iota
	// FormatBzip2 is a bzip2 compressed xml dump.
	FormatBzip2
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatBzip2:
		return "bz2"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatForPath picks the dump format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".bz2":
		return FormatBzip2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// EventKind is the type of a structural markup event.
type EventKind int

const (
	StartElement EventKind = iota
	EndElement
	Text
)

// An Event is one structural markup event from the dump.
type Event struct {
	Kind EventKind
	// Name is the local element name for start and end events.
	Name string
	// Attr holds the attributes of a start element.
	Attr []xml.Attr
	// Text is the trimmed character data of a text event.
	Text string
}

// Attribute returns the value of the named attribute, or "".
func (e Event) Attribute(name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// A Decoder turns dump bytes into a stream of Events without holding
// more than the current token in memory.
type Decoder struct {
	x *xml.Decoder
}

// NewDecoder gets a decoder reading a dump of the given format from r.
func NewDecoder(r io.Reader, f Format) *Decoder {
	if f == FormatBzip2 {
		r = bzip2.NewReader(r)
	}
	x := xml.NewDecoder(bufio.NewReaderSize(r, 64*1024))
	x.Strict = true
	return &Decoder{x: x}
}

// Next gets the next event. It returns io.EOF at the end of the document;
// any other error is terminal.
func (d *Decoder) Next() (Event, error) {
	for {
		tok, err := d.x.Token()
		if err == io.EOF {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, fmt.Errorf("decoding dump: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return Event{Kind: StartElement, Name: t.Name.Local, Attr: t.Attr}, nil
		case xml.EndElement:
			return Event{Kind: EndElement, Name: t.Name.Local}, nil
		case xml.CharData:
			s := strings.TrimSpace(string(t))
			if s == "" {
				continue
			}
			return Event{Kind: Text, Text: s}, nil
		}
	}
}
