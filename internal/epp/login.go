package epp

// Login authenticates the session. Options and services are normally filled
// from the server greeting by the session layer.
type Login struct {
	XMLName     struct{}      `xml:"login"`
	ClientID    string        `xml:"clID"`
	Password    string        `xml:"pw"`
	NewPassword string        `xml:"newPW,omitempty"`
	Options     LoginOptions  `xml:"options"`
	Services    LoginServices `xml:"svcs"`
}

type LoginOptions struct {
	Version string `xml:"version"`
	Lang    string `xml:"lang"`
}

type LoginServices struct {
	ObjectURIs []string          `xml:"objURI"`
	Extension  *ServiceExtension `xml:"svcExtension,omitempty"`
}

func (Login) Operation() Operation { return OpLogin }
func (Login) command()             {}

// Logout ends the session.
type Logout struct{}

func (Logout) Operation() Operation { return OpLogout }
func (Logout) command()             {}
