// Package dialog implements the guided conversation that collects one expense.
//
// A Dialog moves through AwaitingType, AwaitingAmount, AwaitingDescription,
// AwaitingBuyer and AwaitingConfirmation before terminating. Every state
// carries exactly the data gathered so far, so the confirmation step always
// holds a complete core.Entry.
package dialog

import (
	"errors"
	"fmt"
	"strings"

	"casinha/internal/core"
)

const (
	ResetKeyword = "reset"
	ConfirmYes   = "Sim"
	ConfirmNo    = "Não"
)

// Menus offered to the user. Free text is accepted as well.
var (
	TypeOptions    = []string{"despesa", "consumo", "investimento"}
	BuyerOptions   = []string{"Bruno", "Raissa", "João"}
	ConfirmOptions = []string{ConfirmYes, ConfirmNo}
)

// Replies that do not depend on the dialog data.
const (
	PromptType        = "De que tipo foi seu gasto, zé ruela?"
	PromptAmount      = "E quanto custou essa brincadeira?"
	PromptDescription = "AAHHH TÁ! Gastou isso com quê?!"
	PromptBuyer       = "Quem fez essa compra?"
	PromptConfirm     = "Confere se as infos estão corretas:"
	PromptRetry       = "Não entendi. Responde Sim pra registrar ou Não pra cancelar."
	ReplyAbort        = "Encerrando a conversa. Qqer coisa chama"
)

var ErrTerminated = errors.New("dialog already terminated")

// Result is what the caller sends back to the user after a message.
type Result struct {
	Reply   string
	Options []string
	State   State
	Outcome Outcome
	// Entry is the lowercased record to submit; set only when Outcome is Submit.
	Entry core.Entry
}

// Dialog is one user's expense conversation. It is not safe for concurrent
// use; Sessions serializes access.
type Dialog struct {
	current step
}

// New starts a dialog and returns the first prompt.
func New() (*Dialog, Result) {
	d := &Dialog{current: awaitingType{}}
	return d, d.current.prompt()
}

// State returns the current state.
func (d *Dialog) State() State {
	return d.current.state()
}

// Handle feeds the next user message to the dialog.
//
// The reset keyword (any case) or "Não" aborts from every state. Blank input
// repeats the current question. Answers are trimmed, except in
// AwaitingConfirmation where anything other than exactly "Sim" repeats the
// confirmation and returns ErrUnexpectedConfirmationInput.
func (d *Dialog) Handle(text string) (Result, error) {
	if _, done := d.current.(terminated); done {
		return d.current.prompt(), ErrTerminated
	}
	trimmed := strings.TrimSpace(text)
	if IsAbort(trimmed) {
		d.current = terminated{outcome: Abort}
		return d.current.prompt(), nil
	}
	if trimmed == "" {
		return d.current.prompt(), nil
	}
	input := trimmed
	if _, confirming := d.current.(awaitingConfirmation); confirming {
		input = text
	}
	next, err := d.current.advance(input)
	d.current = next
	res := next.prompt()
	if err != nil && next.state() == AwaitingConfirmation {
		res.Reply = PromptRetry + "\n" + res.Reply
	}
	return res, err
}

// Abort terminates the dialog without producing an entry.
func (d *Dialog) Abort() Result {
	d.current = terminated{outcome: Abort}
	return d.current.prompt()
}

// IsAbort reports whether text cancels the dialog.
func IsAbort(text string) bool {
	text = strings.TrimSpace(text)
	return strings.EqualFold(text, ResetKeyword) || text == ConfirmNo
}

// Summary renders the collected entry for confirmation.
func Summary(e core.Entry) string {
	return fmt.Sprintf("tipo: %s\nvalor: %s\ndescrição: %s\ncomprador: %s", e.Type, e.Amount, e.Description, e.Buyer)
}

type step interface {
	state() State
	prompt() Result
	advance(text string) (step, error)
}

type (
	awaitingType         struct{}
	awaitingAmount       struct{ typ string }
	awaitingDescription  struct{ typ, amount string }
	awaitingBuyer        struct{ typ, amount, description string }
	awaitingConfirmation struct{ entry core.Entry }
)

type terminated struct {
	outcome Outcome
	entry   core.Entry
}

func (awaitingType) state() State { return AwaitingType }

func (awaitingType) prompt() Result {
	return Result{Reply: PromptType, Options: TypeOptions, State: AwaitingType}
}

func (awaitingType) advance(text string) (step, error) {
	return awaitingAmount{typ: text}, nil
}

func (awaitingAmount) state() State { return AwaitingAmount }

func (awaitingAmount) prompt() Result {
	return Result{Reply: PromptAmount, State: AwaitingAmount}
}

func (s awaitingAmount) advance(text string) (step, error) {
	return awaitingDescription{typ: s.typ, amount: text}, nil
}

func (awaitingDescription) state() State { return AwaitingDescription }

func (awaitingDescription) prompt() Result {
	return Result{Reply: PromptDescription, State: AwaitingDescription}
}

func (s awaitingDescription) advance(text string) (step, error) {
	return awaitingBuyer{typ: s.typ, amount: s.amount, description: text}, nil
}

func (awaitingBuyer) state() State { return AwaitingBuyer }

func (awaitingBuyer) prompt() Result {
	return Result{Reply: PromptBuyer, Options: BuyerOptions, State: AwaitingBuyer}
}

func (s awaitingBuyer) advance(text string) (step, error) {
	return awaitingConfirmation{entry: core.Entry{
		Type:        s.typ,
		Amount:      s.amount,
		Description: s.description,
		Buyer:       text,
	}}, nil
}

func (awaitingConfirmation) state() State { return AwaitingConfirmation }

func (s awaitingConfirmation) prompt() Result {
	return Result{
		Reply:   PromptConfirm + "\n" + Summary(s.entry),
		Options: ConfirmOptions,
		State:   AwaitingConfirmation,
	}
}

func (s awaitingConfirmation) advance(text string) (step, error) {
	if text != ConfirmYes {
		return s, fmt.Errorf("%w: %q", core.ErrUnexpectedConfirmationInput, text)
	}
	return terminated{outcome: Submit, entry: s.entry}, nil
}

func (terminated) state() State { return Terminated }

func (s terminated) prompt() Result {
	switch s.outcome {
	case Submit:
		return Result{State: Terminated, Outcome: Submit, Entry: s.entry.Lower()}
	default:
		return Result{Reply: ReplyAbort, State: Terminated, Outcome: Abort}
	}
}

func (s terminated) advance(string) (step, error) {
	return s, ErrTerminated
}
