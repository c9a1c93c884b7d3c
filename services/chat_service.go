//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"schat/domain"
	"schat/runtime"
)

// IChatService is everything a session handler may ask of the server.
type IChatService interface {
	Join(session *domain.Session, name string) error
	Enqueue(cmd domain.Command) error
	Post(ctx context.Context, sender *domain.Session, text string) int
	Users() []string
	Leave(session *domain.Session) bool
	DefaultRoom() string
}

type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) Join(session *domain.Session, name string) error {
	return s.orchestrator.Join(session, name)
}

func (s *ChatService) Enqueue(cmd domain.Command) error {
	return s.orchestrator.Submit(cmd)
}

func (s *ChatService) Post(ctx context.Context, sender *domain.Session, text string) int {
	return s.orchestrator.Post(ctx, sender, text)
}

func (s *ChatService) Users() []string {
	return s.orchestrator.Users()
}

func (s *ChatService) Leave(session *domain.Session) bool {
	return s.orchestrator.Leave(session)
}

func (s *ChatService) DefaultRoom() string {
	return s.orchestrator.DefaultRoom()
}
