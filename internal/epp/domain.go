package epp

import "time"

// DomainCheck asks whether names are available for provisioning.
type DomainCheck struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:domain-1.0 check"`
	Names   []string `xml:"name"`
}

type DomainCheckData struct {
	XMLName struct{}      `xml:"urn:ietf:params:xml:ns:domain-1.0 chkData"`
	Results []CheckResult `xml:"cd"`
}

// Available returns the availability of name as reported by the server.
func (d *DomainCheckData) Available(name string) (available, found bool) {
	for _, r := range d.Results {
		if r.Name.Value == name {
			return r.Name.Available, true
		}
	}
	return false, false
}

// Host selection for domain info.
const (
	HostsAll  = "all"
	HostsDel  = "del"
	HostsSub  = "sub"
	HostsNone = "none"
)

type DomainInfo struct {
	XMLName  struct{}       `xml:"urn:ietf:params:xml:ns:domain-1.0 info"`
	Name     DomainInfoName `xml:"name"`
	AuthInfo *AuthInfo      `xml:"authInfo,omitempty"`
}

type DomainInfoName struct {
	Hosts string `xml:"hosts,attr,omitempty"`
	Name  string `xml:",chardata"`
}

type DomainInfoData struct {
	XMLName       struct{}        `xml:"urn:ietf:params:xml:ns:domain-1.0 infData"`
	Name          string          `xml:"name"`
	ROID          string          `xml:"roid"`
	Statuses      []Status        `xml:"status"`
	Registrant    string          `xml:"registrant,omitempty"`
	Contacts      []DomainContact `xml:"contact"`
	NS            *NameServers    `xml:"ns,omitempty"`
	Hosts         []string        `xml:"host"`
	ClientID      string          `xml:"clID"`
	CreatorID     string          `xml:"crID,omitempty"`
	CreatedAt     *time.Time      `xml:"crDate,omitempty"`
	UpdaterID     string          `xml:"upID,omitempty"`
	UpdatedAt     *time.Time      `xml:"upDate,omitempty"`
	ExpiresAt     *time.Time      `xml:"exDate,omitempty"`
	TransferredAt *time.Time      `xml:"trDate,omitempty"`
	AuthInfo      *AuthInfo       `xml:"authInfo,omitempty"`
}

// Contact roles.
const (
	ContactAdmin   = "admin"
	ContactBilling = "billing"
	ContactTech    = "tech"
)

type DomainContact struct {
	Type string `xml:"type,attr"`
	ID   string `xml:",chardata"`
}

// NameServers delegates a domain by host object reference or by host attribute.
type NameServers struct {
	HostObjects    []string        `xml:"hostObj"`
	HostAttributes []HostAttribute `xml:"hostAttr"`
}

type HostAttribute struct {
	Name      string     `xml:"hostName"`
	Addresses []HostAddr `xml:"hostAddr"`
}

type DomainCreate struct {
	XMLName    struct{}        `xml:"urn:ietf:params:xml:ns:domain-1.0 create"`
	Name       string          `xml:"name"`
	Period     *Period         `xml:"period,omitempty"`
	NS         *NameServers    `xml:"ns,omitempty"`
	Registrant string          `xml:"registrant,omitempty"`
	Contacts   []DomainContact `xml:"contact"`
	AuthInfo   AuthInfo        `xml:"authInfo"`
}

type DomainCreateData struct {
	XMLName   struct{}   `xml:"urn:ietf:params:xml:ns:domain-1.0 creData"`
	Name      string     `xml:"name"`
	CreatedAt time.Time  `xml:"crDate"`
	ExpiresAt *time.Time `xml:"exDate,omitempty"`
}

type DomainDelete struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:domain-1.0 delete"`
	Name    string   `xml:"name"`
}

type DomainUpdate struct {
	XMLName struct{}      `xml:"urn:ietf:params:xml:ns:domain-1.0 update"`
	Name    string        `xml:"name"`
	Add     *DomainAddRem `xml:"add,omitempty"`
	Remove  *DomainAddRem `xml:"rem,omitempty"`
	Change  *DomainChange `xml:"chg,omitempty"`
}

type DomainAddRem struct {
	NS       *NameServers    `xml:"ns,omitempty"`
	Contacts []DomainContact `xml:"contact"`
	Statuses []Status        `xml:"status"`
}

// DomainChange replaces attributes. A non-nil empty Registrant clears it.
type DomainChange struct {
	Registrant *string   `xml:"registrant,omitempty"`
	AuthInfo   *AuthInfo `xml:"authInfo,omitempty"`
}

type DomainRenew struct {
	XMLName           struct{} `xml:"urn:ietf:params:xml:ns:domain-1.0 renew"`
	Name              string   `xml:"name"`
	CurrentExpiration Date     `xml:"curExpDate"`
	Period            *Period  `xml:"period,omitempty"`
}

type DomainRenewData struct {
	XMLName   struct{}   `xml:"urn:ietf:params:xml:ns:domain-1.0 renData"`
	Name      string     `xml:"name"`
	ExpiresAt *time.Time `xml:"exDate,omitempty"`
}

type DomainTransfer struct {
	XMLName  struct{}   `xml:"urn:ietf:params:xml:ns:domain-1.0 transfer"`
	Op       TransferOp `xml:"-"`
	Name     string     `xml:"name"`
	Period   *Period    `xml:"period,omitempty"`
	AuthInfo *AuthInfo  `xml:"authInfo,omitempty"`
}

// Transfer states.
const (
	TransferClientApproved  = "clientApproved"
	TransferClientCancelled = "clientCancelled"
	TransferClientRejected  = "clientRejected"
	TransferPending         = "pending"
	TransferServerApproved  = "serverApproved"
	TransferServerCancelled = "serverCancelled"
)

type DomainTransferData struct {
	XMLName     struct{}   `xml:"urn:ietf:params:xml:ns:domain-1.0 trnData"`
	Name        string     `xml:"name"`
	Status      string     `xml:"trStatus"`
	RequesterID string     `xml:"reID"`
	RequestedAt time.Time  `xml:"reDate"`
	ActorID     string     `xml:"acID"`
	ActBy       time.Time  `xml:"acDate"`
	ExpiresAt   *time.Time `xml:"exDate,omitempty"`
}

// DomainPendingData is the pending-action notification delivered through poll.
type DomainPendingData struct {
	XMLName struct{}    `xml:"urn:ietf:params:xml:ns:domain-1.0 panData"`
	Name    PendingName `xml:"name"`
	TRID    TRID        `xml:"paTRID"`
	Date    time.Time   `xml:"paDate"`
}

type PendingName struct {
	Approved bool   `xml:"paResult,attr"`
	Value    string `xml:",chardata"`
}

func (DomainCheck) Operation() Operation    { return OpDomainCheck }
func (DomainInfo) Operation() Operation     { return OpDomainInfo }
func (DomainCreate) Operation() Operation   { return OpDomainCreate }
func (DomainDelete) Operation() Operation   { return OpDomainDelete }
func (DomainUpdate) Operation() Operation   { return OpDomainUpdate }
func (DomainRenew) Operation() Operation    { return OpDomainRenew }
func (DomainTransfer) Operation() Operation { return OpDomainTransfer }

func (DomainCheck) command()    {}
func (DomainInfo) command()     {}
func (DomainCreate) command()   {}
func (DomainDelete) command()   {}
func (DomainUpdate) command()   {}
func (DomainRenew) command()    {}
func (DomainTransfer) command() {}

func (t DomainTransfer) transferOp() TransferOp { return t.Op }
