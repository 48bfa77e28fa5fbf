package dialog

// State is the position of a dialog in the expense conversation.
type State int

const (
	AwaitingType State = iota
	AwaitingAmount
	AwaitingDescription
	AwaitingBuyer
	AwaitingConfirmation
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingType:
		return "awaiting_type"
	case AwaitingAmount:
		return "awaiting_amount"
	case AwaitingDescription:
		return "awaiting_description"
	case AwaitingBuyer:
		return "awaiting_buyer"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Outcome tells the caller what a handled message produced.
type Outcome int

const (
	// Pending means the dialog is still collecting data.
	Pending Outcome = iota
	// Submit means the user confirmed; Result.Entry must be submitted.
	Submit
	// Abort means the user cancelled; nothing is submitted.
	Abort
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Submit:
		return "submit"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}
