// Package bot routes chat messages to the expense dialog and the monthly
// report, independently of the chat transport.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"casinha/internal/core"
	"casinha/internal/dialog"
	"casinha/internal/log"
	"casinha/internal/settlement"
	"casinha/internal/storage"
)

// Messenger delivers a reply to a chat. Options are suggested answers the
// transport may render as buttons or text.
type Messenger interface {
	Send(ctx context.Context, chatID, text string, options []string) error
}

// ReportGenerator renders the settlement of one month.
type ReportGenerator interface {
	Generate(ctx context.Context, p core.Period) (string, error)
}

// EntrySubmitter stores a confirmed entry.
type EntrySubmitter interface {
	Submit(ctx context.Context, e core.Entry, origin storage.Origin) (string, error)
}

// Message is an inbound chat message.
type Message struct {
	ChatID   string
	UserID   string
	UserName string
	Text     string
}

// HandlerFunc handles one inbound message.
type HandlerFunc func(ctx context.Context, m Message) error

// Commands understood by the router, without prefix.
const (
	CmdExpense = "gastei"
	CmdReport  = "fechamento"
	CmdHelp    = "ajuda"
	CmdCancel  = "cancelar"
)

// Fixed replies.
const (
	ReplySubmitted    = "Registrei a compra. Bjs até a próxima"
	ReplySubmitFailed = "Tive algum problema ao enviar as infos. Pede pra Raissa resolver"
	ReplyRetryHint    = "Se quiser tentar de novo, manda /gastei."
	ReplyReportFailed = "Não consegui calcular o fechamento. Tenta de novo mais tarde."
	ReplyNoDialog     = "Não tem nenhuma conversa aberta."
	ReplyRestarted    = "Comecei de novo."
	ReplyRateLimited  = "Calma! Muita mensagem de uma vez. Tenta de novo daqui a pouco."
)

type Router struct {
	sessions  *dialog.Sessions
	reports   ReportGenerator
	entries   EntrySubmitter
	messenger Messenger
	prefix    string
	now       func() time.Time
	logger    *log.Logger
}

// NewRouter wires the dialog sessions to the report and entry services.
// An empty prefix defaults to "/".
func NewRouter(reports ReportGenerator, entries EntrySubmitter, messenger Messenger, prefix string, logger *log.Logger) *Router {
	if prefix == "" {
		prefix = "/"
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Router{
		sessions:  dialog.NewSessions(),
		reports:   reports,
		entries:   entries,
		messenger: messenger,
		prefix:    prefix,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentBot),
	}
}

// Sessions exposes the active dialogs.
func (r *Router) Sessions() *dialog.Sessions {
	return r.sessions
}

// Handle processes one inbound message. Unknown commands, and text outside
// a dialog, are ignored.
func (r *Router) Handle(ctx context.Context, m Message) error {
	key := dialog.SessionKey(m.ChatID, m.UserID)
	cmd, args, isCmd := r.parseCommand(m.Text)
	if isCmd {
		r.logger.InfoContext(ctx, "Command received",
			log.FieldCommand, cmd,
			log.FieldChatID, m.ChatID,
			log.FieldUserID, m.UserID)
		switch cmd {
		case CmdExpense:
			res, restarted := r.sessions.Start(key)
			if restarted {
				res.Reply = ReplyRestarted + "\n" + res.Reply
			}
			return r.reply(ctx, m.ChatID, res)
		case CmdReport:
			return r.handleReport(ctx, m, args)
		case CmdHelp:
			return r.send(ctx, m.ChatID, r.helpText(), nil)
		case CmdCancel:
			res, ok := r.sessions.Cancel(key)
			if !ok {
				return r.send(ctx, m.ChatID, ReplyNoDialog, nil)
			}
			return r.reply(ctx, m.ChatID, res)
		}
	}
	if strings.HasPrefix(strings.TrimSpace(m.Text), r.prefix) {
		return nil
	}

	res, ok, err := r.sessions.Handle(key, m.Text)
	if !ok {
		return nil
	}
	if err != nil && !errors.Is(err, core.ErrUnexpectedConfirmationInput) {
		return err
	}
	if state, active := r.sessions.State(key); active {
		r.logger.DebugContext(ctx, "Dialog advanced", log.FieldChatID, m.ChatID, log.FieldDialogState, state.String())
	}

	if res.Outcome == dialog.Submit {
		return r.submit(ctx, m, res.Entry)
	}
	return r.reply(ctx, m.ChatID, res)
}

func (r *Router) handleReport(ctx context.Context, m Message, args []string) error {
	p, err := settlement.ParsePeriod(args, r.now())
	if err != nil {
		return r.send(ctx, m.ChatID, r.usage(), nil)
	}
	text, err := r.reports.Generate(ctx, p)
	if err != nil {
		r.logger.ErrorContext(ctx, "Report failed",
			log.FieldChatID, m.ChatID,
			log.FieldMonth, p.Month,
			log.FieldYear, p.Year,
			log.FieldError, err)
		return r.send(ctx, m.ChatID, ReplyReportFailed, nil)
	}
	return r.send(ctx, m.ChatID, text, nil)
}

func (r *Router) submit(ctx context.Context, m Message, e core.Entry) error {
	if _, err := r.entries.Submit(ctx, e, storage.Origin{ChatID: m.ChatID, UserID: m.UserID}); err != nil {
		return r.send(ctx, m.ChatID, ReplySubmitFailed+"\n"+ReplyRetryHint, nil)
	}
	return r.send(ctx, m.ChatID, ReplySubmitted, nil)
}

func (r *Router) reply(ctx context.Context, chatID string, res dialog.Result) error {
	if res.Reply == "" {
		return nil
	}
	return r.send(ctx, chatID, res.Reply, res.Options)
}

func (r *Router) send(ctx context.Context, chatID, text string, options []string) error {
	if err := r.messenger.Send(ctx, chatID, text, options); err != nil {
		r.logger.ErrorContext(ctx, "Failed to send reply", log.FieldChatID, chatID, log.FieldError, err)
		return err
	}
	return nil
}

// parseCommand splits "/cmd@bot a b" into ("cmd", [a b], true).
func (r *Router) parseCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], r.prefix) {
		return "", nil, false
	}
	name := strings.TrimPrefix(fields[0], r.prefix)
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(name)
	switch name {
	case CmdExpense, CmdReport, CmdHelp, CmdCancel:
		return name, fields[1:], true
	}
	return "", nil, false
}

func (r *Router) usage() string {
	return "Uso: " + r.prefix + CmdReport + " <mês> [ano]"
}

func (r *Router) helpText() string {
	p := r.prefix
	return strings.Join([]string{
		p + CmdExpense + " registra um gasto",
		p + CmdReport + " <mês> [ano] calcula o fechamento do mês",
		p + CmdCancel + " encerra a conversa aberta",
		"Responda " + dialog.ResetKeyword + " a qualquer momento pra cancelar",
	}, "\n")
}
