package gateway

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/protocol/result"
	"github.com/danmuck/eppctl/internal/protocol/session"
)

type checkItem struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type infoView struct {
	Name       string     `json:"name"`
	ROID       string     `json:"roid"`
	Statuses   []string   `json:"statuses"`
	Registrant string     `json:"registrant,omitempty"`
	NS         []string   `json:"ns,omitempty"`
	ClientID   string     `json:"client_id"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type greetingView struct {
	ServerID      string    `json:"server_id"`
	ServerDate    time.Time `json:"server_date"`
	Versions      []string  `json:"versions"`
	Languages     []string  `json:"languages"`
	ObjectURIs    []string  `json:"object_uris"`
	ExtensionURIs []string  `json:"extension_uris,omitempty"`
}

type msgQView struct {
	Count   int        `json:"count"`
	ID      string     `json:"id,omitempty"`
	QDate   *time.Time `json:"qdate,omitempty"`
	Message string     `json:"message,omitempty"`
}

func renderGreeting(g epp.Greeting) greetingView {
	return greetingView{
		ServerID:      g.ServerID,
		ServerDate:    g.ServerDate,
		Versions:      g.ServiceMenu.Versions,
		Languages:     g.ServiceMenu.Languages,
		ObjectURIs:    g.ServiceMenu.ObjectURIs,
		ExtensionURIs: g.ExtensionURIs(),
	}
}

func renderCheck(data any) any {
	chk, ok := data.(*epp.DomainCheckData)
	if !ok {
		return nil
	}
	out := make([]checkItem, 0, len(chk.Results))
	for _, r := range chk.Results {
		out = append(out, checkItem{Name: r.Name.Value, Available: r.Name.Available, Reason: r.Reason})
	}
	return out
}

func renderInfo(data any) any {
	inf, ok := data.(*epp.DomainInfoData)
	if !ok {
		return nil
	}
	view := infoView{
		Name:       inf.Name,
		ROID:       inf.ROID,
		Registrant: inf.Registrant,
		ClientID:   inf.ClientID,
		CreatedAt:  inf.CreatedAt,
		ExpiresAt:  inf.ExpiresAt,
	}
	for _, st := range inf.Statuses {
		view.Statuses = append(view.Statuses, st.Value)
	}
	if inf.NS != nil {
		view.NS = append(view.NS, inf.NS.HostObjects...)
		for _, h := range inf.NS.HostAttributes {
			view.NS = append(view.NS, h.Name)
		}
	}
	return view
}

// renderXML returns resData as an XML fragment string.
func renderXML(data any) any {
	switch v := data.(type) {
	case nil:
		return nil
	case *epp.RawElement:
		return string(v.Fragment)
	default:
		out, err := xml.Marshal(v)
		if err != nil {
			return nil
		}
		return string(out)
	}
}

func writeResponse(c *gin.Context, resp *epp.Response, data any) {
	body := gin.H{
		"ok":      true,
		"code":    int(resp.Code()),
		"outcome": resp.Outcome().Kind.String(),
		"trid":    gin.H{"cl": resp.TRID.ClTRID, "sv": resp.TRID.SvTRID},
	}
	if len(resp.Results) > 0 {
		body["message"] = resp.Results[0].Message.Text
	}
	if data != nil {
		body["data"] = data
	}
	if q := resp.MsgQ; q != nil {
		view := msgQView{Count: q.Count, ID: q.ID, QDate: q.QDate}
		if q.Msg != nil {
			view.Message = q.Msg.Text
		}
		body["msgq"] = view
	}
	c.JSON(http.StatusOK, body)
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	body := gin.H{"ok": false, "error": err.Error()}
	if code != 0 {
		body["code"] = int(code)
		body["retryable"] = !code.IsPersistent()
	}
	c.JSON(status, body)
}

// statusFor maps the session error taxonomy onto HTTP.
func statusFor(err error) (int, result.Code) {
	var pe *session.ProtocolError
	var se *session.StateError
	var de *epp.DecodeError
	switch {
	case errors.As(err, &pe):
		return protocolStatus(pe.Code), pe.Code
	case errors.Is(err, session.ErrSessionBusy):
		return http.StatusTooManyRequests, 0
	case errors.As(err, &se),
		errors.Is(err, ErrNoSession),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, session.ErrConnectionLost),
		errors.Is(err, session.ErrHandshake),
		errors.Is(err, session.ErrCorrelation),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, 0
	case errors.Is(err, session.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, 0
	case errors.As(err, &de):
		return http.StatusBadGateway, 0
	default:
		return http.StatusInternalServerError, 0
	}
}

func protocolStatus(code result.Code) int {
	switch {
	case code.ClosesSession():
		return http.StatusServiceUnavailable
	case code == result.ObjectDoesNotExist:
		return http.StatusNotFound
	case code == result.ObjectExists, code == result.ObjectPendingTransfer, code == result.StatusProhibitsOperation:
		return http.StatusConflict
	case code == result.AuthenticationError, code == result.AuthorizationError, code == result.InvalidAuthInfo:
		return http.StatusForbidden
	case code >= result.UnknownCommand && code <= result.ParameterValueSyntaxError,
		code == result.ParameterValuePolicyError:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
