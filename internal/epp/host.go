package epp

import "time"

type HostCheck struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:host-1.0 check"`
	Names   []string `xml:"name"`
}

type HostCheckData struct {
	XMLName struct{}      `xml:"urn:ietf:params:xml:ns:host-1.0 chkData"`
	Results []CheckResult `xml:"cd"`
}

type HostInfo struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:host-1.0 info"`
	Name    string   `xml:"name"`
}

type HostInfoData struct {
	XMLName       struct{}   `xml:"urn:ietf:params:xml:ns:host-1.0 infData"`
	Name          string     `xml:"name"`
	ROID          string     `xml:"roid"`
	Statuses      []Status   `xml:"status"`
	Addresses     []HostAddr `xml:"addr"`
	ClientID      string     `xml:"clID"`
	CreatorID     string     `xml:"crID,omitempty"`
	CreatedAt     *time.Time `xml:"crDate,omitempty"`
	UpdaterID     string     `xml:"upID,omitempty"`
	UpdatedAt     *time.Time `xml:"upDate,omitempty"`
	TransferredAt *time.Time `xml:"trDate,omitempty"`
}

type HostCreate struct {
	XMLName   struct{}   `xml:"urn:ietf:params:xml:ns:host-1.0 create"`
	Name      string     `xml:"name"`
	Addresses []HostAddr `xml:"addr"`
}

type HostCreateData struct {
	XMLName   struct{}  `xml:"urn:ietf:params:xml:ns:host-1.0 creData"`
	Name      string    `xml:"name"`
	CreatedAt time.Time `xml:"crDate"`
}

type HostDelete struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:host-1.0 delete"`
	Name    string   `xml:"name"`
}

type HostUpdate struct {
	XMLName struct{}    `xml:"urn:ietf:params:xml:ns:host-1.0 update"`
	Name    string      `xml:"name"`
	Add     *HostAddRem `xml:"add,omitempty"`
	Remove  *HostAddRem `xml:"rem,omitempty"`
	Change  *HostChange `xml:"chg,omitempty"`
}

type HostAddRem struct {
	Addresses []HostAddr `xml:"addr"`
	Statuses  []Status   `xml:"status"`
}

// HostChange renames a host.
type HostChange struct {
	Name string `xml:"name"`
}

func (HostCheck) Operation() Operation  { return OpHostCheck }
func (HostInfo) Operation() Operation   { return OpHostInfo }
func (HostCreate) Operation() Operation { return OpHostCreate }
func (HostDelete) Operation() Operation { return OpHostDelete }
func (HostUpdate) Operation() Operation { return OpHostUpdate }

func (HostCheck) command()  {}
func (HostInfo) command()   {}
func (HostCreate) command() {}
func (HostDelete) command() {}
func (HostUpdate) command() {}
