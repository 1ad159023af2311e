package ext

import "time"

const NSChangePoll = "urn:ietf:params:xml:ns:changePoll-1.0"

// ChangeData describes a server-side change delivered through poll (RFC 8590).
type ChangeData struct {
	XMLName   struct{}        `xml:"urn:ietf:params:xml:ns:changePoll-1.0 changeData"`
	State     string          `xml:"state,attr,omitempty"`
	Operation ChangeOperation `xml:"operation"`
	Date      time.Time       `xml:"date"`
	SvTRID    string          `xml:"svTRID"`
	Who       string          `xml:"who"`
	CaseID    *ChangeCaseID   `xml:"caseId,omitempty"`
	Reason    *ChangeReason   `xml:"reason,omitempty"`
}

// Before reports whether the accompanying resData shows the object before the change.
// The default state is "after".
func (c *ChangeData) Before() bool { return c.State == "before" }

// ChangeOperation is create, delete, renew, transfer, update, restore,
// autoRenew, autoDelete, autoPurge or custom (with Op naming it).
type ChangeOperation struct {
	Op    string `xml:"op,attr,omitempty"`
	Value string `xml:",chardata"`
}

// ChangeCaseID identifies the case behind a change: udrp, urs or custom.
type ChangeCaseID struct {
	Type  string `xml:"type,attr"`
	Name  string `xml:"name,attr,omitempty"`
	Value string `xml:",chardata"`
}

type ChangeReason struct {
	Lang string `xml:"lang,attr,omitempty"`
	Text string `xml:",chardata"`
}

func (ChangeData) Namespace() string { return NSChangePoll }
