package ext

import "time"

const NSRGP = "urn:ietf:params:xml:ns:rgp-1.0"

// Grace period states reported in rgpStatus.
const (
	RGPAddPeriod        = "addPeriod"
	RGPAutoRenewPeriod  = "autoRenewPeriod"
	RGPRenewPeriod      = "renewPeriod"
	RGPTransferPeriod   = "transferPeriod"
	RGPRedemptionPeriod = "redemptionPeriod"
	RGPPendingRestore   = "pendingRestore"
	RGPPendingDelete    = "pendingDelete"
)

// RGPRestore is the domain update extension that asks for, or reports on, a
// restore out of the redemption grace period.
type RGPRestore struct {
	XMLName struct{}     `xml:"urn:ietf:params:xml:ns:rgp-1.0 update"`
	Restore RGPRestoreOp `xml:"restore"`
}

type RGPRestoreOp struct {
	Op     string     `xml:"op,attr"`
	Report *RGPReport `xml:"report,omitempty"`
}

// RGPReport is the restore report required by registries after a request.
type RGPReport struct {
	PreData    string    `xml:"preData"`
	PostData   string    `xml:"postData"`
	DeletedAt  time.Time `xml:"delTime"`
	RestoredAt time.Time `xml:"resTime"`
	Reason     string    `xml:"resReason"`
	Statements []string  `xml:"statement"`
	Other      string    `xml:"other,omitempty"`
}

func RGPRestoreRequest() *RGPRestore {
	return &RGPRestore{Restore: RGPRestoreOp{Op: "request"}}
}

func RGPRestoreReport(report RGPReport) *RGPRestore {
	return &RGPRestore{Restore: RGPRestoreOp{Op: "report", Report: &report}}
}

type RGPStatus struct {
	Value string `xml:"s,attr"`
	Lang  string `xml:"lang,attr,omitempty"`
	Text  string `xml:",chardata"`
}

// RGPInfo accompanies domain info for names in a grace period.
type RGPInfo struct {
	XMLName  struct{}    `xml:"urn:ietf:params:xml:ns:rgp-1.0 infData"`
	Statuses []RGPStatus `xml:"rgpStatus"`
}

// RGPUpdate accompanies the response to a restore.
type RGPUpdate struct {
	XMLName  struct{}    `xml:"urn:ietf:params:xml:ns:rgp-1.0 upData"`
	Statuses []RGPStatus `xml:"rgpStatus"`
}

func (RGPRestore) Namespace() string { return NSRGP }
func (RGPInfo) Namespace() string    { return NSRGP }
func (RGPUpdate) Namespace() string  { return NSRGP }
