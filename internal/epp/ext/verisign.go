package ext

import "time"

const (
	NSLowBalance = "http://www.verisign.com/epp/lowbalance-poll-1.0"
	NSRGPPoll    = "http://www.verisign.com/epp/rgp-poll-1.0"
)

// LowBalanceData is the poll message sent when a registrar's available
// credit drops below its threshold.
type LowBalanceData struct {
	XMLName         struct{}        `xml:"http://www.verisign.com/epp/lowbalance-poll-1.0 pollData"`
	RegistrarName   string          `xml:"registrarName"`
	CreditLimit     string          `xml:"creditLimit"`
	CreditThreshold CreditThreshold `xml:"creditThreshold"`
	AvailableCredit string          `xml:"availableCredit"`
}

// CreditThreshold is FIXED (an amount) or PERCENT (of the credit limit).
type CreditThreshold struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// RGPPollData reports a restore that needs a report.
type RGPPollData struct {
	XMLName     struct{}  `xml:"http://www.verisign.com/epp/rgp-poll-1.0 pollData"`
	Name        string    `xml:"name"`
	Status      RGPStatus `xml:"rgpStatus"`
	RequestedAt time.Time `xml:"reqDate"`
	ReportDueAt time.Time `xml:"reportDueDate"`
}
