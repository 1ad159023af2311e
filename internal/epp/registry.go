package epp

import (
	"encoding/xml"
	"fmt"
	"sort"
)

// Registry maps element names to the Go types that decode them. Populate it
// before building a Codec; it is read-only afterwards.
type Registry struct {
	data       map[xml.Name]func() any
	extensions map[xml.Name]func() Extension
	extURIs    map[string]struct{}
}

// NewRegistry returns a registry holding the core object response types.
func NewRegistry() *Registry {
	r := &Registry{
		data:       make(map[xml.Name]func() any),
		extensions: make(map[xml.Name]func() Extension),
		extURIs:    make(map[string]struct{}),
	}
	core := map[xml.Name]func() any{
		{Space: NSDomain, Local: "chkData"}:  func() any { return &DomainCheckData{} },
		{Space: NSDomain, Local: "infData"}:  func() any { return &DomainInfoData{} },
		{Space: NSDomain, Local: "creData"}:  func() any { return &DomainCreateData{} },
		{Space: NSDomain, Local: "renData"}:  func() any { return &DomainRenewData{} },
		{Space: NSDomain, Local: "trnData"}:  func() any { return &DomainTransferData{} },
		{Space: NSDomain, Local: "panData"}:  func() any { return &DomainPendingData{} },
		{Space: NSHost, Local: "chkData"}:    func() any { return &HostCheckData{} },
		{Space: NSHost, Local: "infData"}:    func() any { return &HostInfoData{} },
		{Space: NSHost, Local: "creData"}:    func() any { return &HostCreateData{} },
		{Space: NSContact, Local: "chkData"}: func() any { return &ContactCheckData{} },
		{Space: NSContact, Local: "infData"}: func() any { return &ContactInfoData{} },
		{Space: NSContact, Local: "creData"}: func() any { return &ContactCreateData{} },
		{Space: NSContact, Local: "trnData"}: func() any { return &ContactTransferData{} },
	}
	for name, fn := range core {
		r.data[name] = fn
	}
	return r
}

// RegisterData adds a resData type. newFn must return a pointer.
func (r *Registry) RegisterData(name xml.Name, newFn func() any) error {
	if name.Space == "" || name.Local == "" {
		return fmt.Errorf("epp: resData name must be qualified: %+v", name)
	}
	if _, exists := r.data[name]; exists {
		return fmt.Errorf("epp: resData %s %s already registered", name.Space, name.Local)
	}
	r.data[name] = newFn
	return nil
}

// RegisterExtension adds an extension element. newFn must return a pointer.
func (r *Registry) RegisterExtension(name xml.Name, newFn func() Extension) error {
	if name.Space == "" || name.Local == "" {
		return fmt.Errorf("epp: extension name must be qualified: %+v", name)
	}
	if _, exists := r.extensions[name]; exists {
		return fmt.Errorf("epp: extension %s %s already registered", name.Space, name.Local)
	}
	r.extensions[name] = newFn
	r.extURIs[name.Space] = struct{}{}
	return nil
}

// ExtensionURIs lists the namespaces with at least one registered extension.
func (r *Registry) ExtensionURIs() []string {
	out := make([]string, 0, len(r.extURIs))
	for uri := range r.extURIs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) newData(name xml.Name) (any, bool) {
	fn, ok := r.data[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

func (r *Registry) newExtension(name xml.Name) (Extension, bool) {
	fn, ok := r.extensions[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}
