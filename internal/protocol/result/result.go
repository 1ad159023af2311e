package result

// Result is one <result> element of a response.
type Result struct {
	Code      Code       `xml:"code,attr"`
	Message   Message    `xml:"msg"`
	Values    []Value    `xml:"value"`
	ExtValues []ExtValue `xml:"extValue"`
}

// Message is human-readable text with an optional language tag (default "en").
type Message struct {
	Lang string `xml:"lang,attr,omitempty"`
	Text string `xml:",chardata"`
}

// Value holds the offending element echoed by the server, kept verbatim.
type Value struct {
	Inner string `xml:",innerxml"`
}

type ExtValue struct {
	Value  Value   `xml:"value"`
	Reason Message `xml:"reason"`
}

type Kind int

const (
	KindFailure Kind = iota
	KindSuccess
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindPartial:
		return "partial"
	default:
		return "failure"
	}
}

// Outcome is the classification of a response's result list.
type Outcome struct {
	Kind    Kind
	Codes   []Code
	Payload any
}

// Code returns the first, authoritative code, or zero for an empty outcome.
func (o Outcome) Code() Code {
	if len(o.Codes) == 0 {
		return 0
	}
	return o.Codes[0]
}

// Classify maps a result list and decoded payload to an Outcome. The first
// code decides the band. A success list that also carries any error code is
// Partial and keeps the payload; a list led by an error code is Failure and
// drops it. An empty list is Failure with no codes.
func Classify(results []Result, payload any) Outcome {
	if len(results) == 0 {
		return Outcome{Kind: KindFailure}
	}
	codes := make([]Code, len(results))
	for i, r := range results {
		codes[i] = r.Code
	}
	if !codes[0].IsSuccess() {
		return Outcome{Kind: KindFailure, Codes: codes}
	}
	for _, c := range codes[1:] {
		if c.IsError() {
			return Outcome{Kind: KindPartial, Codes: codes, Payload: payload}
		}
	}
	return Outcome{Kind: KindSuccess, Codes: codes, Payload: payload}
}
