package epp

import (
	"fmt"
	"time"
)

type ContactCheck struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:contact-1.0 check"`
	IDs     []string `xml:"id"`
}

type ContactCheckData struct {
	XMLName struct{}             `xml:"urn:ietf:params:xml:ns:contact-1.0 chkData"`
	Results []ContactCheckResult `xml:"cd"`
}

type ContactCheckResult struct {
	ID     CheckName `xml:"id"`
	Reason string    `xml:"reason,omitempty"`
}

type ContactInfo struct {
	XMLName  struct{}  `xml:"urn:ietf:params:xml:ns:contact-1.0 info"`
	ID       string    `xml:"id"`
	AuthInfo *AuthInfo `xml:"authInfo,omitempty"`
}

type ContactInfoData struct {
	XMLName       struct{}     `xml:"urn:ietf:params:xml:ns:contact-1.0 infData"`
	ID            string       `xml:"id"`
	ROID          string       `xml:"roid"`
	Statuses      []Status     `xml:"status"`
	PostalInfo    []PostalInfo `xml:"postalInfo"`
	Voice         *Phone       `xml:"voice,omitempty"`
	Fax           *Phone       `xml:"fax,omitempty"`
	Email         string       `xml:"email"`
	ClientID      string       `xml:"clID"`
	CreatorID     string       `xml:"crID,omitempty"`
	CreatedAt     *time.Time   `xml:"crDate,omitempty"`
	UpdaterID     string       `xml:"upID,omitempty"`
	UpdatedAt     *time.Time   `xml:"upDate,omitempty"`
	TransferredAt *time.Time   `xml:"trDate,omitempty"`
	AuthInfo      *AuthInfo    `xml:"authInfo,omitempty"`
	Disclose      *Disclose    `xml:"disclose,omitempty"`
}

// Postal info forms.
const (
	PostalLocalized     = "loc"
	PostalInternational = "int"
)

type PostalInfo struct {
	Type         string        `xml:"type,attr"`
	Name         string        `xml:"name"`
	Organization string        `xml:"org,omitempty"`
	Address      PostalAddress `xml:"addr"`
}

type PostalAddress struct {
	Street      []string `xml:"street"`
	City        string   `xml:"city"`
	Province    string   `xml:"sp,omitempty"`
	PostalCode  string   `xml:"pc,omitempty"`
	CountryCode string   `xml:"cc"`
}

// NewPostalAddress validates the country code against countries and returns
// an address carrying its canonical form. RFC 5733 allows up to three street lines.
func NewPostalAddress(countries CountryTable, street []string, city, province, postalCode, country string) (PostalAddress, error) {
	if countries == nil {
		countries = ISO3166
	}
	if len(street) > 3 {
		return PostalAddress{}, fmt.Errorf("epp: at most 3 street lines, got %d", len(street))
	}
	cc, ok := countries.Lookup(country)
	if !ok {
		return PostalAddress{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	return PostalAddress{
		Street:      street,
		City:        city,
		Province:    province,
		PostalCode:  postalCode,
		CountryCode: cc,
	}, nil
}

// Phone is an E.164 number with optional extension.
type Phone struct {
	Extension string `xml:"x,attr,omitempty"`
	Number    string `xml:",chardata"`
}

// Disclose lists contact fields whose disclosure differs from server policy.
type Disclose struct {
	Flag          bool            `xml:"flag,attr"`
	Names         []DiscloseField `xml:"name"`
	Organizations []DiscloseField `xml:"org"`
	Addresses     []DiscloseField `xml:"addr"`
	Voice         *Empty          `xml:"voice,omitempty"`
	Fax           *Empty          `xml:"fax,omitempty"`
	Email         *Empty          `xml:"email,omitempty"`
}

type DiscloseField struct {
	Type string `xml:"type,attr"`
}

type ContactCreate struct {
	XMLName    struct{}     `xml:"urn:ietf:params:xml:ns:contact-1.0 create"`
	ID         string       `xml:"id"`
	PostalInfo []PostalInfo `xml:"postalInfo"`
	Voice      *Phone       `xml:"voice,omitempty"`
	Fax        *Phone       `xml:"fax,omitempty"`
	Email      string       `xml:"email"`
	AuthInfo   AuthInfo     `xml:"authInfo"`
	Disclose   *Disclose    `xml:"disclose,omitempty"`
}

type ContactCreateData struct {
	XMLName   struct{}  `xml:"urn:ietf:params:xml:ns:contact-1.0 creData"`
	ID        string    `xml:"id"`
	CreatedAt time.Time `xml:"crDate"`
}

type ContactDelete struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:contact-1.0 delete"`
	ID      string   `xml:"id"`
}

type ContactUpdate struct {
	XMLName struct{}       `xml:"urn:ietf:params:xml:ns:contact-1.0 update"`
	ID      string         `xml:"id"`
	Add     *ContactAddRem `xml:"add,omitempty"`
	Remove  *ContactAddRem `xml:"rem,omitempty"`
	Change  *ContactChange `xml:"chg,omitempty"`
}

type ContactAddRem struct {
	Statuses []Status `xml:"status"`
}

type ContactChange struct {
	PostalInfo []PostalInfo `xml:"postalInfo"`
	Voice      *Phone       `xml:"voice,omitempty"`
	Fax        *Phone       `xml:"fax,omitempty"`
	Email      string       `xml:"email,omitempty"`
	AuthInfo   *AuthInfo    `xml:"authInfo,omitempty"`
	Disclose   *Disclose    `xml:"disclose,omitempty"`
}

type ContactTransfer struct {
	XMLName  struct{}   `xml:"urn:ietf:params:xml:ns:contact-1.0 transfer"`
	Op       TransferOp `xml:"-"`
	ID       string     `xml:"id"`
	AuthInfo *AuthInfo  `xml:"authInfo,omitempty"`
}

type ContactTransferData struct {
	XMLName     struct{}  `xml:"urn:ietf:params:xml:ns:contact-1.0 trnData"`
	ID          string    `xml:"id"`
	Status      string    `xml:"trStatus"`
	RequesterID string    `xml:"reID"`
	RequestedAt time.Time `xml:"reDate"`
	ActorID     string    `xml:"acID"`
	ActBy       time.Time `xml:"acDate"`
}

func (ContactCheck) Operation() Operation    { return OpContactCheck }
func (ContactInfo) Operation() Operation     { return OpContactInfo }
func (ContactCreate) Operation() Operation   { return OpContactCreate }
func (ContactDelete) Operation() Operation   { return OpContactDelete }
func (ContactUpdate) Operation() Operation   { return OpContactUpdate }
func (ContactTransfer) Operation() Operation { return OpContactTransfer }

func (ContactCheck) command()    {}
func (ContactInfo) command()     {}
func (ContactCreate) command()   {}
func (ContactDelete) command()   {}
func (ContactUpdate) command()   {}
func (ContactTransfer) command() {}

func (t ContactTransfer) transferOp() TransferOp { return t.Op }
