package remote

// Status is the state of one request token.
type Status int

const (
	Pending Status = iota
	Retrying
	Accepted
	RejectedStale
	Cancelled
	Failed
	FailedTerminal
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Retrying:
		return "retrying"
	case Accepted:
		return "accepted"
	case RejectedStale:
		return "rejected-stale"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	case FailedTerminal:
		return "failed-terminal"
	}
	return "unknown"
}

// Active reports whether a token can still produce a commit.
func (s Status) Active() bool {
	return s == Pending || s == Retrying
}
