// Package ext holds the registry extensions this client understands:
// secDNS-1.1, rgp-1.0, changePoll-1.0, fee-1.0 and the VeriSign poll messages.
package ext

import (
	"encoding/xml"

	"go.uber.org/multierr"

	"github.com/danmuck/eppctl/internal/epp"
)

// Register adds every extension and poll payload in this package to reg.
func Register(reg *epp.Registry) error {
	var err error
	ext := func(ns, local string, fn func() epp.Extension) {
		err = multierr.Append(err, reg.RegisterExtension(xml.Name{Space: ns, Local: local}, fn))
	}
	data := func(ns, local string, fn func() any) {
		err = multierr.Append(err, reg.RegisterData(xml.Name{Space: ns, Local: local}, fn))
	}

	ext(NSSecDNS, "create", func() epp.Extension { return &SecDNSCreate{} })
	ext(NSSecDNS, "update", func() epp.Extension { return &SecDNSUpdate{} })
	ext(NSSecDNS, "infData", func() epp.Extension { return &SecDNSInfo{} })
	ext(NSRGP, "update", func() epp.Extension { return &RGPRestore{} })
	ext(NSRGP, "infData", func() epp.Extension { return &RGPInfo{} })
	ext(NSRGP, "upData", func() epp.Extension { return &RGPUpdate{} })
	ext(NSChangePoll, "changeData", func() epp.Extension { return &ChangeData{} })
	ext(NSFee, "check", func() epp.Extension { return &FeeCheck{} })
	ext(NSFee, "create", func() epp.Extension { return &FeeCreate{} })
	ext(NSFee, "renew", func() epp.Extension { return &FeeRenew{} })
	ext(NSFee, "update", func() epp.Extension { return &FeeUpdate{} })
	ext(NSFee, "transfer", func() epp.Extension { return &FeeTransfer{} })
	ext(NSFee, "chkData", func() epp.Extension { return &FeeCheckData{} })
	ext(NSFee, "creData", func() epp.Extension { return &FeeCreateData{} })
	ext(NSFee, "renData", func() epp.Extension { return &FeeRenewData{} })
	ext(NSFee, "updData", func() epp.Extension { return &FeeUpdateData{} })
	ext(NSFee, "trnData", func() epp.Extension { return &FeeTransferData{} })
	ext(NSFee, "delData", func() epp.Extension { return &FeeDeleteData{} })

	data(NSLowBalance, "pollData", func() any { return &LowBalanceData{} })
	data(NSRGPPoll, "pollData", func() any { return &RGPPollData{} })
	return err
}

// NewRegistry returns the core registry with every extension registered.
func NewRegistry() *epp.Registry {
	reg := epp.NewRegistry()
	if err := Register(reg); err != nil {
		// names above are distinct; a failure here is a programming error
		panic(err)
	}
	return reg
}
