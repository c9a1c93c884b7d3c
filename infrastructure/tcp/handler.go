package tcp

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"

	"schat/domain"
	"schat/errors"
	"schat/services"
)

// Handler serves one connection from handshake to departure.
//
// Whatever the way out (quit, EOF, read failure, oversized line) the session
// is released from every room and from the session registry. Only quit sends
// the termination sentinel.
type Handler struct {
	log           *slog.Logger
	chat          services.IChatService
	initialBuffer int
	maxLine       int
}

func NewHandler(log *slog.Logger, chat services.IChatService, initialBuffer, maxLine int) *Handler {
	return &Handler{
		log:           log,
		chat:          chat,
		initialBuffer: initialBuffer,
		maxLine:       maxLine,
	}
}

func (h *Handler) Handle(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	session := domain.NewSession(conn, remote)
	log := h.log.With("session_id", session.ID, "remote", remote)
	reader := NewLineReader(conn, h.initialBuffer, h.maxLine)

	if err := h.handshake(session, reader, log); err != nil {
		log.Debug("Handshake aborted", "error", err)
		_ = session.Close()
		return
	}
	log = log.With("user", session.Name)
	log.Info("Session joined", "room", h.chat.DefaultRoom())

	for {
		line, err := reader.ReadLine()
		if err != nil {
			h.abort(session, err, log)
			return
		}
		if h.serve(ctx, session, line, log) {
			return
		}
	}
}

// handshake reads usernames until one is valid and free.
func (h *Handler) handshake(session *domain.Session, reader *LineReader, log *slog.Logger) error {
	for {
		line, err := reader.ReadLine()
		if err != nil {
			return err
		}
		name := ParseUsername(line)
		if err := domain.ValidateUsername(name); err != nil {
			log.Debug("Username rejected", "error", err)
			if err := session.SendString(domain.PromptInvalidUsername); err != nil {
				return err
			}
			continue
		}

		err = h.chat.Join(session, name)
		switch {
		case err == nil:
			return nil
		case stderrors.Is(err, errors.ErrUsernameTaken):
			log.Debug("Username taken", "name", name)
			if err := session.SendString(domain.PromptUsernameTaken); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

// serve runs one request and reports whether the session is over.
func (h *Handler) serve(ctx context.Context, session *domain.Session, line string, log *slog.Logger) bool {
	req := ParseRequest(line)
	switch req.Kind {
	case Empty:
		return false
	case Message:
		delivered := h.chat.Post(ctx, session, req.Arg)
		log.Debug("Message broadcast", "deliveries", delivered)
	case Queued:
		cmd := domain.Command{Op: req.Op, Session: session, Arg: req.Arg}
		if err := h.chat.Enqueue(cmd); err != nil {
			log.Warn("Command not queued", "opcode", req.Op, "error", err)
		}
	case Users:
		h.reply(session, domain.FormatUserListing(h.chat.Users()), log)
	case Quit:
		h.chat.Leave(session)
		if err := session.Terminate(); err != nil {
			log.Debug("Termination not delivered", "error", err)
		}
		log.Info("Session left")
		return true
	case InvalidRoom:
		h.reply(session, []byte(domain.ReplyInvalidRoom), log)
	default:
		h.reply(session, []byte(domain.ReplyNotRecognized), log)
	}
	return false
}

// abort is the implicit quit: same release, no sentinel.
func (h *Handler) abort(session *domain.Session, err error, log *slog.Logger) {
	h.chat.Leave(session)
	_ = session.Close()
	switch {
	case stderrors.Is(err, errors.ErrLineTooLong):
		log.Error("Session aborted", "error", err)
	case stderrors.Is(err, io.EOF), stderrors.Is(err, net.ErrClosed):
		log.Info("Session disconnected")
	default:
		log.Warn("Session read failed", "error", err)
	}
}

func (h *Handler) reply(session *domain.Session, payload []byte, log *slog.Logger) {
	if err := session.Send(payload); err != nil {
		log.Debug("Reply not delivered", "error", err)
	}
}
