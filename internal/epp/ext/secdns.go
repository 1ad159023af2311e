package ext

import (
	"errors"
	"time"
)

const NSSecDNS = "urn:ietf:params:xml:ns:secDNS-1.1"

// DSData is a delegation signer record.
type DSData struct {
	KeyTag     uint16   `xml:"keyTag"`
	Algorithm  uint8    `xml:"alg"`
	DigestType uint8    `xml:"digestType"`
	Digest     string   `xml:"digest"`
	KeyData    *KeyData `xml:"keyData,omitempty"`
}

// KeyData is a DNSKEY record.
type KeyData struct {
	Flags     uint16 `xml:"flags"`
	Protocol  uint8  `xml:"protocol"`
	Algorithm uint8  `xml:"alg"`
	PublicKey string `xml:"pubKey"`
}

// SecDNSCreate attaches DNSSEC material to a domain create. Exactly one of
// DSData or KeyData is used.
type SecDNSCreate struct {
	XMLName    struct{}  `xml:"urn:ietf:params:xml:ns:secDNS-1.1 create"`
	MaxSigLife uint32    `xml:"maxSigLife,omitempty"`
	DSData     []DSData  `xml:"dsData"`
	KeyData    []KeyData `xml:"keyData"`
}

var ErrSecDNSChoice = errors.New("secdns: exactly one of dsData or keyData is required")

func NewDSCreate(maxSigLife time.Duration, ds ...DSData) (*SecDNSCreate, error) {
	if len(ds) == 0 {
		return nil, ErrSecDNSChoice
	}
	return &SecDNSCreate{MaxSigLife: seconds(maxSigLife), DSData: ds}, nil
}

func NewKeyCreate(maxSigLife time.Duration, keys ...KeyData) (*SecDNSCreate, error) {
	if len(keys) == 0 {
		return nil, ErrSecDNSChoice
	}
	return &SecDNSCreate{MaxSigLife: seconds(maxSigLife), KeyData: keys}, nil
}

// SecDNSUpdate changes the DNSSEC material of a domain. Removals are
// processed before additions.
type SecDNSUpdate struct {
	XMLName struct{}      `xml:"urn:ietf:params:xml:ns:secDNS-1.1 update"`
	Urgent  bool          `xml:"urgent,attr,omitempty"`
	Remove  *SecDNSRemove `xml:"rem,omitempty"`
	Add     *SecDNSSet    `xml:"add,omitempty"`
	Change  *SecDNSChange `xml:"chg,omitempty"`
}

type SecDNSRemove struct {
	All     *bool     `xml:"all,omitempty"`
	DSData  []DSData  `xml:"dsData"`
	KeyData []KeyData `xml:"keyData"`
}

type SecDNSSet struct {
	DSData  []DSData  `xml:"dsData"`
	KeyData []KeyData `xml:"keyData"`
}

type SecDNSChange struct {
	MaxSigLife uint32 `xml:"maxSigLife"`
}

// RemoveAllSecDNS drops every DS and key record of the domain.
func RemoveAllSecDNS() *SecDNSUpdate {
	all := true
	return &SecDNSUpdate{Remove: &SecDNSRemove{All: &all}}
}

// SecDNSInfo is returned alongside domain info.
type SecDNSInfo struct {
	XMLName    struct{}  `xml:"urn:ietf:params:xml:ns:secDNS-1.1 infData"`
	MaxSigLife uint32    `xml:"maxSigLife,omitempty"`
	DSData     []DSData  `xml:"dsData"`
	KeyData    []KeyData `xml:"keyData"`
}

func (SecDNSCreate) Namespace() string { return NSSecDNS }
func (SecDNSUpdate) Namespace() string { return NSSecDNS }
func (SecDNSInfo) Namespace() string   { return NSSecDNS }

func seconds(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d / time.Second)
}
