package epptest

import (
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/eppctl/internal/epp"
	"github.com/danmuck/eppctl/internal/protocol/result"
)

// Message is one queued service message.
type Message struct {
	ID    string
	QDate time.Time
	Text  string
	Data  any
}

// MessageQueue answers poll commands the way a registry queue does: req
// peeks the head, ack removes by id.
type MessageQueue struct {
	mu   sync.Mutex
	msgs []Message
}

func (q *MessageQueue) Push(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, m)
}

func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// Respond builds the reply to a poll frame.
func (q *MessageQueue) Respond(f epp.ClientFrame) (*epp.Response, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch cmd := f.Command.(type) {
	case epp.PollRequest:
		if len(q.msgs) == 0 {
			return Respond(f.ClTRID, result.SuccessNoMessages, nil), nil
		}
		head := q.msgs[0]
		r := Respond(f.ClTRID, result.SuccessAckToDequeue, head.Data)
		qdate := head.QDate
		r.MsgQ = &epp.MsgQ{
			Count: len(q.msgs),
			ID:    head.ID,
			QDate: &qdate,
			Msg:   &result.Message{Text: head.Text},
		}
		return r, nil
	case epp.PollAck:
		for i, m := range q.msgs {
			if m.ID != cmd.MessageID {
				continue
			}
			q.msgs = append(q.msgs[:i], q.msgs[i+1:]...)
			r := Respond(f.ClTRID, result.Success, nil)
			r.MsgQ = &epp.MsgQ{Count: len(q.msgs)}
			if len(q.msgs) > 0 {
				r.MsgQ.ID = q.msgs[0].ID
			}
			return r, nil
		}
		return Respond(f.ClTRID, result.ObjectDoesNotExist, nil), nil
	default:
		return nil, fmt.Errorf("epptest: not a poll command: %T", f.Command)
	}
}

// Serve answers n poll frames from p.
func (q *MessageQueue) Serve(p *Peer, n int) error {
	for i := 0; i < n; i++ {
		f, err := p.ReadClientFrame()
		if err != nil {
			return err
		}
		r, err := q.Respond(f)
		if err != nil {
			return err
		}
		if err := p.SendResponse(r); err != nil {
			return err
		}
	}
	return nil
}
