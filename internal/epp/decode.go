package epp

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/eppctl/internal/protocol/result"
)

type FrameKind int

const (
	FrameGreeting FrameKind = iota + 1
	FrameResponse
	FrameHello
	FrameCommand
)

func (k FrameKind) String() string {
	switch k {
	case FrameGreeting:
		return "greeting"
	case FrameResponse:
		return "response"
	case FrameHello:
		return "hello"
	case FrameCommand:
		return "command"
	default:
		return "unknown"
	}
}

// ServerFrame is a decoded server-to-client document.
type ServerFrame struct {
	Kind     FrameKind
	Greeting *Greeting
	Response *Response
}

// ClientFrame is a decoded client-to-server document.
type ClientFrame struct {
	Kind          FrameKind
	Command       Command
	Extensions    []Extension
	RawExtensions []RawElement
	ClTRID        string
}

var errMissingTRID = errors.New("response without trID/svTRID")

// DecodeFrame decodes a greeting or response. Anything else, and any
// document whose envelope or known payload is malformed, is a *DecodeError.
func (c *Codec) DecodeFrame(b []byte) (ServerFrame, error) {
	d := xml.NewDecoder(bytes.NewReader(b))
	body, err := openEnvelope(d)
	if err != nil {
		return ServerFrame{}, &DecodeError{Fragment: b, Err: err}
	}
	switch body.Name.Local {
	case "greeting":
		var g Greeting
		if err := d.DecodeElement(&g, &body); err != nil {
			return ServerFrame{}, &DecodeError{Fragment: b, Err: err}
		}
		return ServerFrame{Kind: FrameGreeting, Greeting: &g}, nil
	case "response":
		r, err := c.decodeResponse(d)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				return ServerFrame{}, err
			}
			return ServerFrame{}, &DecodeError{Fragment: b, Err: err}
		}
		return ServerFrame{Kind: FrameResponse, Response: r}, nil
	default:
		return ServerFrame{}, &DecodeError{Fragment: b, Err: fmt.Errorf("unexpected <%s> from server", body.Name.Local)}
	}
}

// DecodeClientFrame decodes a hello or command document.
func (c *Codec) DecodeClientFrame(b []byte) (ClientFrame, error) {
	d := xml.NewDecoder(bytes.NewReader(b))
	body, err := openEnvelope(d)
	if err != nil {
		return ClientFrame{}, &DecodeError{Fragment: b, Err: err}
	}
	switch body.Name.Local {
	case "hello":
		if err := d.Skip(); err != nil {
			return ClientFrame{}, &DecodeError{Fragment: b, Err: err}
		}
		return ClientFrame{Kind: FrameHello}, nil
	case "command":
		f, err := c.decodeCommand(d)
		if err != nil {
			return ClientFrame{}, &DecodeError{Fragment: b, Err: err}
		}
		return f, nil
	default:
		return ClientFrame{}, &DecodeError{Fragment: b, Err: fmt.Errorf("unexpected <%s> from client", body.Name.Local)}
	}
}

// openEnvelope consumes <epp> and returns its first child element.
func openEnvelope(d *xml.Decoder) (xml.StartElement, error) {
	root, err := nextStart(d)
	if err != nil {
		return xml.StartElement{}, fmt.Errorf("read root: %w", err)
	}
	if root.Name.Space != NSEPP || root.Name.Local != "epp" {
		return xml.StartElement{}, fmt.Errorf("unexpected root <%s> in %q", root.Name.Local, root.Name.Space)
	}
	child, err := nextStart(d)
	if err != nil {
		return xml.StartElement{}, fmt.Errorf("read body: %w", err)
	}
	return child, nil
}

// nextStart returns the next start element at the current depth, or an
// error if the enclosing element ends first.
func nextStart(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, io.ErrUnexpectedEOF
			}
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return xml.StartElement{}, fmt.Errorf("unexpected </%s>", t.Name.Local)
		}
	}
}

// children calls fn for each child element of the element just opened.
// fn must consume the child entirely.
func children(d *xml.Decoder, fn func(el xml.StartElement) error) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (c *Codec) decodeResponse(d *xml.Decoder) (*Response, error) {
	r := &Response{}
	sawTRID := false
	err := children(d, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "result":
			var res result.Result
			if err := d.DecodeElement(&res, &el); err != nil {
				return fmt.Errorf("result: %w", err)
			}
			if !res.Code.Valid() {
				return fmt.Errorf("result: invalid code %d", res.Code)
			}
			r.Results = append(r.Results, res)
		case "msgQ":
			var q MsgQ
			if err := d.DecodeElement(&q, &el); err != nil {
				return fmt.Errorf("msgQ: %w", err)
			}
			r.MsgQ = &q
		case "resData":
			return children(d, func(data xml.StartElement) error {
				v, err := c.decodeData(d, data)
				if err != nil {
					return err
				}
				if r.Data == nil {
					r.Data = v
				}
				return nil
			})
		case "extension":
			return children(d, func(ext xml.StartElement) error {
				return c.decodeResponseExtension(d, ext, r)
			})
		case "trID":
			if err := d.DecodeElement(&r.TRID, &el); err != nil {
				return fmt.Errorf("trID: %w", err)
			}
			sawTRID = true
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(r.Results) == 0 {
		return nil, errors.New("response without result")
	}
	if !sawTRID || r.TRID.SvTRID == "" {
		return nil, errMissingTRID
	}
	return r, nil
}

// decodeData decodes one resData child: typed when registered, raw otherwise.
func (c *Codec) decodeData(d *xml.Decoder, el xml.StartElement) (any, error) {
	frag, err := captureElement(d, el)
	if err != nil {
		return nil, err
	}
	v, ok := c.reg.newData(el.Name)
	if !ok {
		return &RawElement{Name: el.Name, Fragment: frag}, nil
	}
	if err := xml.Unmarshal(frag, v); err != nil {
		return nil, &DecodeError{Fragment: frag, Err: fmt.Errorf("resData %s: %w", el.Name.Local, err)}
	}
	return v, nil
}

// decodeResponseExtension never fails the response: a registered extension
// that does not decode becomes a warning.
func (c *Codec) decodeResponseExtension(d *xml.Decoder, el xml.StartElement, r *Response) error {
	frag, err := captureElement(d, el)
	if err != nil {
		return err
	}
	v, ok := c.reg.newExtension(el.Name)
	if !ok {
		r.RawExtensions = append(r.RawExtensions, RawElement{Name: el.Name, Fragment: frag})
		return nil
	}
	if err := xml.Unmarshal(frag, v); err != nil {
		r.ExtensionWarnings = append(r.ExtensionWarnings, ExtensionWarning{Name: el.Name, Fragment: frag, Err: err})
		return nil
	}
	r.Extensions = append(r.Extensions, v)
	return nil
}

func (c *Codec) decodeCommand(d *xml.Decoder) (ClientFrame, error) {
	f := ClientFrame{Kind: FrameCommand}
	err := children(d, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "extension":
			return children(d, func(ext xml.StartElement) error {
				frag, err := captureElement(d, ext)
				if err != nil {
					return err
				}
				v, ok := c.reg.newExtension(ext.Name)
				if !ok {
					f.RawExtensions = append(f.RawExtensions, RawElement{Name: ext.Name, Fragment: frag})
					return nil
				}
				if err := xml.Unmarshal(frag, v); err != nil {
					return fmt.Errorf("extension %s: %w", ext.Name.Local, err)
				}
				f.Extensions = append(f.Extensions, v)
				return nil
			})
		case "clTRID":
			return d.DecodeElement(&f.ClTRID, &el)
		default:
			if f.Command != nil {
				return fmt.Errorf("second command verb <%s>", el.Name.Local)
			}
			cmd, err := decodeVerbElement(d, el)
			if err != nil {
				return err
			}
			f.Command = cmd
			return nil
		}
	})
	if err != nil {
		return ClientFrame{}, err
	}
	if f.Command == nil {
		return ClientFrame{}, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	return f, nil
}

func decodeVerbElement(d *xml.Decoder, verb xml.StartElement) (Command, error) {
	if entry, ok := lookupSessionVerb(verb.Name.Local); ok {
		return entry.decode(d, verb, nil)
	}
	inner, err := nextStart(d)
	if err != nil {
		return nil, fmt.Errorf("<%s>: %w", verb.Name.Local, err)
	}
	entry, ok := lookupObjectVerb(verb.Name.Local, inner.Name.Space)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %q", ErrUnknownCommand, verb.Name.Local, inner.Name.Space)
	}
	cmd, err := entry.decode(d, verb, &inner)
	if err != nil {
		return nil, err
	}
	// consume the rest of the verb element
	if err := d.Skip(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// captureElement consumes the subtree rooted at start and re-encodes it as a
// self-contained fragment with every namespace declared in place.
func captureElement(d *xml.Decoder, start xml.StartElement) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 0
	var tok xml.Token = start
	for {
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if err := enc.EncodeToken(withoutNamespaceDecls(t)); err != nil {
				return nil, err
			}
		case xml.EndElement:
			depth--
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return nil, err
				}
				return buf.Bytes(), nil
			}
		case xml.CharData:
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, err
			}
		}
		next, err := d.Token()
		if err != nil {
			return nil, err
		}
		tok = next
	}
}

func withoutNamespaceDecls(el xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: el.Name}
	for _, a := range el.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out.Attr = append(out.Attr, a)
	}
	return out
}
