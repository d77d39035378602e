package bot

import "sync"

// chatSessions maps Telegram chats to RAG session ids.
type chatSessions struct {
	mu  sync.Mutex
	ids map[int64]string
}

func newChatSessions() *chatSessions {
	return &chatSessions{
		ids: make(map[int64]string),
	}
}

func (c *chatSessions) get(chatID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids[chatID]
}

func (c *chatSessions) set(chatID int64, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[chatID] = sessionID
}

// take removes the mapping for a chat and returns the old session id.
func (c *chatSessions) take(chatID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.ids[chatID]
	delete(c.ids, chatID)
	return id
}
