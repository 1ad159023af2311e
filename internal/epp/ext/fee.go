package ext

import "github.com/danmuck/eppctl/internal/epp"

const NSFee = "urn:ietf:params:xml:ns:epp:fee-1.0"

// Fee command names.
const (
	FeeCommandCreate   = "create"
	FeeCommandRenew    = "renew"
	FeeCommandTransfer = "transfer"
	FeeCommandRestore  = "restore"
)

// Fee applied values.
const (
	FeeAppliedImmediate = "immediate"
	FeeAppliedDelayed   = "delayed"
)

// Fee is one fee element. Amount is the decimal text as sent on the wire.
type Fee struct {
	Description string `xml:"description,attr,omitempty"`
	Refundable  *bool  `xml:"refundable,attr,omitempty"`
	GracePeriod string `xml:"grace-period,attr,omitempty"`
	Applied     string `xml:"applied,attr,omitempty"`
	Amount      string `xml:",chardata"`
}

type FeeCredit struct {
	Description string `xml:"description,attr,omitempty"`
	Amount      string `xml:",chardata"`
}

type FeeReason struct {
	Lang string `xml:"lang,attr,omitempty"`
	Text string `xml:",chardata"`
}

// FeeCommand names a command whose price is asked for in a check.
type FeeCommand struct {
	Name       string      `xml:"name,attr"`
	Phase      string      `xml:"phase,attr,omitempty"`
	Subphase   string      `xml:"subphase,attr,omitempty"`
	CustomName string      `xml:"customName,attr,omitempty"`
	Period     *epp.Period `xml:"period,omitempty"`
}

// FeeCheck asks the server to price commands for every name in a domain check.
type FeeCheck struct {
	XMLName  struct{}     `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 check"`
	Currency string       `xml:"currency,omitempty"`
	Commands []FeeCommand `xml:"command"`
}

func NewFeeCheck(currency string, commands ...FeeCommand) *FeeCheck {
	return &FeeCheck{Currency: currency, Commands: commands}
}

// FeeTransform is the fee a client agrees to pay on a transform command.
type FeeTransform struct {
	Currency string      `xml:"currency,omitempty"`
	Fees     []Fee       `xml:"fee"`
	Credits  []FeeCredit `xml:"credit"`
}

type FeeCreate struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 create"`
	FeeTransform
}

type FeeRenew struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 renew"`
	FeeTransform
}

type FeeUpdate struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 update"`
	FeeTransform
}

// FeeTransfer accompanies a transfer request; queries carry no fee element.
type FeeTransfer struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 transfer"`
	FeeTransform
}

func NewFeeCreate(currency string, fees ...Fee) *FeeCreate {
	return &FeeCreate{FeeTransform: FeeTransform{Currency: currency, Fees: fees}}
}

func NewFeeRenew(currency string, fees ...Fee) *FeeRenew {
	return &FeeRenew{FeeTransform: FeeTransform{Currency: currency, Fees: fees}}
}

func NewFeeUpdate(currency string, fees ...Fee) *FeeUpdate {
	return &FeeUpdate{FeeTransform: FeeTransform{Currency: currency, Fees: fees}}
}

func NewFeeTransfer(currency string, fees ...Fee) *FeeTransfer {
	return &FeeTransfer{FeeTransform: FeeTransform{Currency: currency, Fees: fees}}
}

// FeeCheckData answers a FeeCheck, one entry per checked object.
type FeeCheckData struct {
	XMLName  struct{}    `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 chkData"`
	Currency string      `xml:"currency"`
	Objects  []FeeObject `xml:"cd"`
}

type FeeObject struct {
	// Avail is absent when the object is available.
	Avail    *bool            `xml:"avail,attr,omitempty"`
	ObjectID string           `xml:"objID"`
	Class    string           `xml:"class,omitempty"`
	Commands []FeeCommandData `xml:"command"`
	Reason   *FeeReason       `xml:"reason,omitempty"`
}

func (o FeeObject) Available() bool { return o.Avail == nil || *o.Avail }

// Object returns the entry for id.
func (d *FeeCheckData) Object(id string) (FeeObject, bool) {
	for _, o := range d.Objects {
		if o.ObjectID == id {
			return o, true
		}
	}
	return FeeObject{}, false
}

type FeeCommandData struct {
	Name       string      `xml:"name,attr"`
	Phase      string      `xml:"phase,attr,omitempty"`
	Subphase   string      `xml:"subphase,attr,omitempty"`
	CustomName string      `xml:"customName,attr,omitempty"`
	Standard   *bool       `xml:"standard,attr,omitempty"`
	Period     *epp.Period `xml:"period,omitempty"`
	Fees       []Fee       `xml:"fee"`
	Credits    []FeeCredit `xml:"credit"`
	Reason     *FeeReason  `xml:"reason,omitempty"`
}

// FeeResult is the charge reported after a transform command.
type FeeResult struct {
	Currency    string      `xml:"currency,omitempty"`
	Period      *epp.Period `xml:"period,omitempty"`
	Fees        []Fee       `xml:"fee"`
	Credits     []FeeCredit `xml:"credit"`
	Balance     string      `xml:"balance,omitempty"`
	CreditLimit string      `xml:"creditLimit,omitempty"`
}

type FeeCreateData struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 creData"`
	FeeResult
}

type FeeRenewData struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 renData"`
	FeeResult
}

type FeeUpdateData struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 updData"`
	FeeResult
}

type FeeTransferData struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 trnData"`
	FeeResult
}

type FeeDeleteData struct {
	XMLName struct{} `xml:"urn:ietf:params:xml:ns:epp:fee-1.0 delData"`
	FeeResult
}

func (FeeCheck) Namespace() string        { return NSFee }
func (FeeCreate) Namespace() string       { return NSFee }
func (FeeRenew) Namespace() string        { return NSFee }
func (FeeUpdate) Namespace() string       { return NSFee }
func (FeeTransfer) Namespace() string     { return NSFee }
func (FeeCheckData) Namespace() string    { return NSFee }
func (FeeCreateData) Namespace() string   { return NSFee }
func (FeeRenewData) Namespace() string    { return NSFee }
func (FeeUpdateData) Namespace() string   { return NSFee }
func (FeeTransferData) Namespace() string { return NSFee }
func (FeeDeleteData) Namespace() string   { return NSFee }
