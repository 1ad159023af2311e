package epp

// PollRequest peeks at the head of the message queue without consuming it.
type PollRequest struct{}

func (PollRequest) Operation() Operation { return OpPollRequest }
func (PollRequest) command()             {}

// PollAck removes message MessageID from the queue.
type PollAck struct {
	MessageID string
}

func (PollAck) Operation() Operation { return OpPollAck }
func (PollAck) command()             {}
