package relay

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Hub maps a workspace id to the single socket currently bound to it.
type Hub struct {
	conns cmap.ConcurrentMap[string, *Conn]
}

func NewHub() *Hub {
	return &Hub{
		conns: cmap.New[*Conn](),
	}
}

// Bind points workspaceID at c and returns the socket it replaced, if any.
func (h *Hub) Bind(workspaceID string, c *Conn) (replaced *Conn) {
	h.conns.Upsert(workspaceID, c, func(exist bool, valueInMap, newValue *Conn) *Conn {
		if exist && valueInMap != newValue {
			replaced = valueInMap
		}
		return newValue
	})
	return replaced
}

// Unbind removes workspaceID only while it still points at c.
func (h *Hub) Unbind(workspaceID string, c *Conn) bool {
	return h.conns.RemoveCb(workspaceID, func(_ string, v *Conn, exists bool) bool {
		return exists && v == c
	})
}

func (h *Hub) Lookup(workspaceID string) (*Conn, bool) {
	return h.conns.Get(workspaceID)
}

func (h *Hub) Count() int {
	return h.conns.Count()
}

// Evict closes and unbinds the socket of workspaceID, used when the workspace goes away.
func (h *Hub) Evict(workspaceID, reason string) bool {
	c, ok := h.conns.Pop(workspaceID)
	if !ok {
		return false
	}
	c.Close(reason)
	return true
}
