package notify

import (
	"context"
	"sync"
)

// Recorder — Sender, который запоминает сообщения. Используется в тестах.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

// Message — записанное сообщение.
type Message struct {
	ChatID  int64
	Text    string
	Buttons [][]Button
	// Document заполняется для SendDocument.
	Document []byte
}

func (r *Recorder) Send(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{ChatID: chatID, Text: text})
	return nil
}

func (r *Recorder) SendWithButtons(_ context.Context, chatID int64, text string, rows [][]Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{ChatID: chatID, Text: text, Buttons: rows})
	return nil
}

func (r *Recorder) SendDocument(_ context.Context, chatID int64, name string, data []byte, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{ChatID: chatID, Text: caption + " [" + name + "]", Document: data})
	return nil
}

// Last возвращает последнее сообщение или пустое, если сообщений не было.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

// Count возвращает число записанных сообщений.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Messages)
}
