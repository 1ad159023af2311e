package epp

import (
	"encoding/xml"
	"fmt"
	"net/netip"
	"time"

	"github.com/danmuck/eppctl/internal/protocol/result"
)

const (
	NSEPP     = "urn:ietf:params:xml:ns:epp-1.0"
	NSDomain  = "urn:ietf:params:xml:ns:domain-1.0"
	NSHost    = "urn:ietf:params:xml:ns:host-1.0"
	NSContact = "urn:ietf:params:xml:ns:contact-1.0"

	// Version is the only protocol version this client speaks.
	Version = "1.0"
)

// Greeting is the server's capability advertisement. A newer greeting
// replaces the stored one.
type Greeting struct {
	ServerID    string      `xml:"svID"`
	ServerDate  time.Time   `xml:"svDate"`
	ServiceMenu ServiceMenu `xml:"svcMenu"`
	DCP         *DCP        `xml:"dcp,omitempty"`
}

type ServiceMenu struct {
	Versions   []string          `xml:"version"`
	Languages  []string          `xml:"lang"`
	ObjectURIs []string          `xml:"objURI"`
	Extension  *ServiceExtension `xml:"svcExtension,omitempty"`
}

type ServiceExtension struct {
	URIs []string `xml:"extURI"`
}

// ExtensionURIs returns the advertised extension namespaces, or nil.
func (g Greeting) ExtensionURIs() []string {
	if g.ServiceMenu.Extension == nil {
		return nil
	}
	return g.ServiceMenu.Extension.URIs
}

// DCP is the server's data collection policy.
type DCP struct {
	Access     Tags           `xml:"access"`
	Statements []DCPStatement `xml:"statement"`
	Expiry     *DCPExpiry     `xml:"expiry,omitempty"`
}

type DCPStatement struct {
	Purpose   Tags `xml:"purpose"`
	Recipient Tags `xml:"recipient"`
	Retention Tags `xml:"retention"`
}

type DCPExpiry struct {
	Absolute *time.Time `xml:"absolute,omitempty"`
	Relative string     `xml:"relative,omitempty"`
}

// Tags is a list of empty marker elements, e.g. <purpose><admin/><prov/></purpose>.
type Tags []string

func (t Tags) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, name := range t {
		el := xml.StartElement{Name: xml.Name{Local: name}}
		if err := e.EncodeToken(el); err != nil {
			return err
		}
		if err := e.EncodeToken(el.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (t *Tags) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			*t = append(*t, el.Name.Local)
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Response is a decoded server response.
type Response struct {
	Results []result.Result
	MsgQ    *MsgQ
	// Data is the typed resData payload, a RawElement when the element is
	// not registered, or nil when absent.
	Data              any
	Extensions        []Extension
	RawExtensions     []RawElement
	ExtensionWarnings []ExtensionWarning
	TRID              TRID
}

// Code returns the first, authoritative result code.
func (r *Response) Code() result.Code {
	if r == nil || len(r.Results) == 0 {
		return 0
	}
	return r.Results[0].Code
}

// Outcome classifies the result list.
func (r *Response) Outcome() result.Outcome {
	return result.Classify(r.Results, r.Data)
}

// Extension returns the first decoded extension in namespace ns.
func (r *Response) Extension(ns string) (Extension, bool) {
	for _, e := range r.Extensions {
		if e.Namespace() == ns {
			return e, true
		}
	}
	return nil, false
}

// MsgQ describes the server's message queue.
type MsgQ struct {
	Count int             `xml:"count,attr"`
	ID    string          `xml:"id,attr,omitempty"`
	QDate *time.Time      `xml:"qDate,omitempty"`
	Msg   *result.Message `xml:"msg,omitempty"`
}

type TRID struct {
	ClTRID string `xml:"clTRID,omitempty"`
	SvTRID string `xml:"svTRID"`
}

// Extension is a namespaced fragment carried under <extension>.
type Extension interface {
	Namespace() string
}

// RawElement is an element the registry has no type for, kept as a
// self-contained XML fragment.
type RawElement struct {
	Name     xml.Name
	Fragment []byte
}

func (r RawElement) Namespace() string { return r.Name.Space }

// ExtensionWarning records a registered extension that failed to decode.
type ExtensionWarning struct {
	Name     xml.Name
	Fragment []byte
	Err      error
}

func (w ExtensionWarning) String() string {
	return fmt.Sprintf("extension %s %s: %v", w.Name.Space, w.Name.Local, w.Err)
}

// Status is an object status value such as "ok" or "clientHold".
type Status struct {
	Value  string `xml:"s,attr"`
	Lang   string `xml:"lang,attr,omitempty"`
	Reason string `xml:",chardata"`
}

const (
	StatusOK                       = "ok"
	StatusLinked                   = "linked"
	StatusInactive                 = "inactive"
	StatusPendingCreate            = "pendingCreate"
	StatusPendingDelete            = "pendingDelete"
	StatusPendingRenew             = "pendingRenew"
	StatusPendingTransfer          = "pendingTransfer"
	StatusPendingUpdate            = "pendingUpdate"
	StatusClientHold               = "clientHold"
	StatusClientDeleteProhibited   = "clientDeleteProhibited"
	StatusClientRenewProhibited    = "clientRenewProhibited"
	StatusClientTransferProhibited = "clientTransferProhibited"
	StatusClientUpdateProhibited   = "clientUpdateProhibited"
	StatusServerHold               = "serverHold"
	StatusServerDeleteProhibited   = "serverDeleteProhibited"
	StatusServerRenewProhibited    = "serverRenewProhibited"
	StatusServerTransferProhibited = "serverTransferProhibited"
	StatusServerUpdateProhibited   = "serverUpdateProhibited"
)

// AuthInfo carries an object's authorization password.
type AuthInfo struct {
	Password string `xml:"pw"`
}

// Period is a registration period.
type Period struct {
	Unit  string `xml:"unit,attr"`
	Value int    `xml:",chardata"`
}

// Years returns a period in years. RFC 5731 bounds periods to 1..99.
func Years(n int) (*Period, error) {
	if n < 1 || n > 99 {
		return nil, fmt.Errorf("epp: period out of range: %d", n)
	}
	return &Period{Unit: "y", Value: n}, nil
}

// Months returns a period in months.
func Months(n int) (*Period, error) {
	if n < 1 || n > 99 {
		return nil, fmt.Errorf("epp: period out of range: %d", n)
	}
	return &Period{Unit: "m", Value: n}, nil
}

// CheckName is a checked object name with its availability flag.
type CheckName struct {
	Available bool   `xml:"avail,attr"`
	Value     string `xml:",chardata"`
}

// CheckResult is one <cd> entry of a domain or host check.
type CheckResult struct {
	Name   CheckName `xml:"name"`
	Reason string    `xml:"reason,omitempty"`
}

// HostAddr is an IP address attached to a host.
type HostAddr struct {
	IP      string `xml:"ip,attr,omitempty"`
	Address string `xml:",chardata"`
}

// NewHostAddr tags addr with its family.
func NewHostAddr(addr netip.Addr) HostAddr {
	ip := "v4"
	if addr.Is6() && !addr.Is4In6() {
		ip = "v6"
	}
	return HostAddr{IP: ip, Address: addr.Unmap().String()}
}

// Empty marks a presence-only element.
type Empty struct{}

// Date is a calendar date in YYYY-MM-DD form.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(dateLayout, string(b))
	if err != nil {
		return fmt.Errorf("epp: invalid date %q: %w", string(b), err)
	}
	*d = DateOf(t)
	return nil
}
