package epp

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
)

// Header is the XML declaration every document starts with.
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`

var (
	ErrUnknownCommand = errors.New("epp: unknown command")
	ErrInvalidClTRID  = errors.New("epp: invalid clTRID")
)

// clTRID bounds from the epp-1.0 trIDStringType.
const (
	minTRIDLen = 3
	maxTRIDLen = 64
)

// DecodeError reports a document that could not be turned into a value.
type DecodeError struct {
	Fragment []byte
	Err      error
}

func (e *DecodeError) Error() string {
	const max = 120
	frag := e.Fragment
	if len(frag) > max {
		frag = frag[:max]
	}
	return fmt.Sprintf("epp: decode: %v (near %q)", e.Err, frag)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Codec converts between EPP documents and typed values. It holds no state
// beyond its registry and is safe for concurrent use.
type Codec struct {
	reg *Registry
}

func NewCodec(reg *Registry) *Codec {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Codec{reg: reg}
}

func (c *Codec) Registry() *Registry { return c.reg }

// ValidateClTRID checks the protocol length bounds of a client transaction id.
func ValidateClTRID(id string) error {
	if len(id) < minTRIDLen || len(id) > maxTRIDLen {
		return fmt.Errorf("%w: length %d outside %d..%d", ErrInvalidClTRID, len(id), minTRIDLen, maxTRIDLen)
	}
	return nil
}

var (
	eppRoot      = xml.StartElement{Name: xml.Name{Space: NSEPP, Local: "epp"}}
	helloElement = xml.StartElement{Name: xml.Name{Local: "hello"}}
)

func element(local string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: local}, Attr: attrs}
}

func plainAttr(local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: local}, Value: value}
}

// document writes the header and <epp> root around body.
func document(body func(buf *bytes.Buffer, enc *xml.Encoder) error) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.EncodeToken(eppRoot); err != nil {
		return nil, err
	}
	if err := body(&buf, enc); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(eppRoot.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) EncodeHello() ([]byte, error) {
	return document(func(_ *bytes.Buffer, enc *xml.Encoder) error {
		if err := enc.EncodeToken(helloElement); err != nil {
			return err
		}
		return enc.EncodeToken(helloElement.End())
	})
}

// EncodeCommand renders cmd with its extensions and client transaction id.
// An empty clTRID omits the element.
func (c *Codec) EncodeCommand(cmd Command, exts []Extension, clTRID string) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnknownCommand)
	}
	spec, ok := Lookup(cmd.Operation())
	if !ok || spec.Verb == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Operation())
	}
	if clTRID != "" {
		if err := ValidateClTRID(clTRID); err != nil {
			return nil, err
		}
	}
	return document(func(buf *bytes.Buffer, enc *xml.Encoder) error {
		cmdEl := element("command")
		if err := enc.EncodeToken(cmdEl); err != nil {
			return err
		}
		if err := encodeVerb(enc, spec, cmd); err != nil {
			return err
		}
		if err := encodeExtensions(buf, enc, exts, nil); err != nil {
			return err
		}
		if clTRID != "" {
			if err := enc.EncodeElement(clTRID, element("clTRID")); err != nil {
				return err
			}
		}
		return enc.EncodeToken(cmdEl.End())
	})
}

func encodeVerb(enc *xml.Encoder, spec OperationSpec, cmd Command) error {
	switch v := cmd.(type) {
	case Login, *Login:
		return enc.Encode(v)
	case Logout, *Logout:
		return emptyElement(enc, element("logout"))
	case PollRequest, *PollRequest:
		return emptyElement(enc, element("poll", plainAttr("op", "req")))
	case PollAck:
		return encodePollAck(enc, v)
	case *PollAck:
		return encodePollAck(enc, *v)
	}

	verb := element(spec.Verb)
	if tc, ok := cmd.(transferCommand); ok {
		op := tc.transferOp()
		if !op.Valid() {
			return fmt.Errorf("epp: invalid transfer op %q", op)
		}
		verb.Attr = append(verb.Attr, plainAttr("op", string(op)))
	}
	if err := enc.EncodeToken(verb); err != nil {
		return err
	}
	if err := enc.Encode(cmd); err != nil {
		return err
	}
	return enc.EncodeToken(verb.End())
}

func encodePollAck(enc *xml.Encoder, ack PollAck) error {
	if ack.MessageID == "" {
		return errors.New("epp: poll ack requires a message id")
	}
	return emptyElement(enc, element("poll", plainAttr("op", "ack"), plainAttr("msgID", ack.MessageID)))
}

func emptyElement(enc *xml.Encoder, el xml.StartElement) error {
	if err := enc.EncodeToken(el); err != nil {
		return err
	}
	return enc.EncodeToken(el.End())
}

// encodeExtensions writes the <extension> block when there is anything to put in it.
func encodeExtensions(buf *bytes.Buffer, enc *xml.Encoder, exts []Extension, raws []RawElement) error {
	if len(exts) == 0 && len(raws) == 0 {
		return nil
	}
	extEl := element("extension")
	if err := enc.EncodeToken(extEl); err != nil {
		return err
	}
	for _, e := range exts {
		if err := encodeValue(buf, enc, e); err != nil {
			return err
		}
	}
	for _, r := range raws {
		if err := writeRaw(buf, enc, r); err != nil {
			return err
		}
	}
	return enc.EncodeToken(extEl.End())
}

func encodeValue(buf *bytes.Buffer, enc *xml.Encoder, v any) error {
	switch raw := v.(type) {
	case RawElement:
		return writeRaw(buf, enc, raw)
	case *RawElement:
		return writeRaw(buf, enc, *raw)
	}
	return enc.Encode(v)
}

// writeRaw splices a captured fragment into the encoder's output.
func writeRaw(buf *bytes.Buffer, enc *xml.Encoder, raw RawElement) error {
	if err := enc.Flush(); err != nil {
		return err
	}
	buf.Write(raw.Fragment)
	return nil
}

func (c *Codec) EncodeGreeting(g Greeting) ([]byte, error) {
	return document(func(_ *bytes.Buffer, enc *xml.Encoder) error {
		return enc.EncodeElement(g, element("greeting"))
	})
}

func (c *Codec) EncodeResponse(r *Response) ([]byte, error) {
	if r == nil || len(r.Results) == 0 {
		return nil, errors.New("epp: response needs at least one result")
	}
	return document(func(buf *bytes.Buffer, enc *xml.Encoder) error {
		respEl := element("response")
		if err := enc.EncodeToken(respEl); err != nil {
			return err
		}
		for _, res := range r.Results {
			if err := enc.EncodeElement(res, element("result")); err != nil {
				return err
			}
		}
		if r.MsgQ != nil {
			if err := enc.EncodeElement(r.MsgQ, element("msgQ")); err != nil {
				return err
			}
		}
		if r.Data != nil {
			dataEl := element("resData")
			if err := enc.EncodeToken(dataEl); err != nil {
				return err
			}
			if err := encodeValue(buf, enc, r.Data); err != nil {
				return err
			}
			if err := enc.EncodeToken(dataEl.End()); err != nil {
				return err
			}
		}
		if err := encodeExtensions(buf, enc, r.Extensions, r.RawExtensions); err != nil {
			return err
		}
		if err := enc.EncodeElement(r.TRID, element("trID")); err != nil {
			return err
		}
		return enc.EncodeToken(respEl.End())
	})
}
