package service

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestTelegramService(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)
	ctx := context.Background()

	t.Run("Send", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.Text == "hello" && msg.ChatID == 123 && msg.DisableWebPagePreview
		})).Return(tgbotapi.Message{}, nil).Once()

		assert.NoError(t, svc.Send(ctx, 123, "hello"))
		mockSender.AssertExpectations(t)
	})

	t.Run("SendError", func(t *testing.T) {
		mockSender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("forbidden")).Once()

		err := svc.Send(ctx, 456, "hello")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "456")
		mockSender.AssertExpectations(t)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, svc.Send(canceled, 1, "x"), context.Canceled)
	})
}
